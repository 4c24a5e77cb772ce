package service

// DecodeSecret decodes a Base32 (RFC 4648 alphabet) seed leniently. Lowercase letters are folded
// to uppercase and every other character outside A-Z2-7 is ignored, including whitespace,
// hyphens and "=" padding. Trailing bits that do not fill a byte are dropped.
func DecodeSecret(secret string) []byte {
	out := make([]byte, 0, len(secret)*5/8)

	var buffer uint32
	var bits uint

	for i := 0; i < len(secret); i++ {
		value, ok := base32Value(secret[i])
		if !ok {
			continue
		}

		buffer = buffer<<5 | uint32(value)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
			buffer &= 1<<bits - 1
		}
	}

	return out
}

func base32Value(c byte) (byte, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A', true
	case c >= 'a' && c <= 'z':
		return c - 'a', true
	case c >= '2' && c <= '7':
		return c - '2' + 26, true
	default:
		return 0, false
	}
}
