// Package service generates RFC 6238 one-time codes from Base32 seeds.
package service

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // RFC 6238 mandates HMAC-SHA1 for interoperable authenticators
	"encoding/binary"
	"fmt"
	"time"

	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
)

// MinKeyLength is the shortest decoded seed, in bytes, that yields a code (80 bits).
//
// RFC 4226 asks for at least 128 bits and recommends 160, so real provisioning seeds clear this
// floor. Shorter seeds that still decode, such as "JBSWY3DP" (5 bytes) or "MZXW6YTBOI" (6 bytes),
// are reported as not configured here even though an external authenticator would accept them
// and show a code. The floor is what keeps lenient decoding from turning junk like
// "not-base32!!" into a code.
const MinKeyLength = 10

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Engine derives codes at the time reported by its clock.
type Engine struct {
	clock Clock
}

// NewEngine creates an Engine. A nil clock uses time.Now.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{clock: clock}
}

// Now returns the code for secret at the current clock reading. The clock is read once.
func (e *Engine) Now(secret string) totpDomain.Code {
	return CurrentCode(secret, e.clock())
}

// CurrentCode returns the 6-digit code for secret in the 30-second window containing at,
// together with the seconds left in that window (1 to 30).
//
// The Base32 decoding is lenient: whitespace and "=" padding are dropped, lowercase is
// accepted, and characters outside A-Z2-7 are skipped. A secret that decodes to fewer than
// MinKeyLength bytes returns the zero Code.
func CurrentCode(secret string, at time.Time) totpDomain.Code {
	key := DecodeSecret(secret)
	if len(key) < MinKeyLength {
		return totpDomain.Code{}
	}

	seconds := at.Unix()
	counter := floorDiv(seconds, totpDomain.Period)

	return totpDomain.Code{
		Code:             hotp(key, uint64(counter)),
		SecondsRemaining: int(totpDomain.Period - (seconds - counter*totpDomain.Period)),
	}
}

// hotp computes the RFC 4226 value for counter.
func hotp(key []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	digest := mac.Sum(nil)

	offset := digest[len(digest)-1] & 0x0F
	value := binary.BigEndian.Uint32(digest[offset:offset+4]) & 0x7FFFFFFF

	return fmt.Sprintf("%0*d", totpDomain.Digits, value%1_000_000)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
