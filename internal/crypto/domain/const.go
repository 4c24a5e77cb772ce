package domain

// Algorithm identifies the AEAD used to seal secrets at rest.
//
// Use AESGCM on CPUs with AES-NI and ChaCha20 elsewhere. Both take 32-byte keys and 12-byte
// nonces, and append a 16-byte tag.
type Algorithm string

const (
	// AESGCM is AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the size in bytes of every key this package accepts.
const KeySize = 32

// HKDF info strings for the subkeys derived from the process cipher key. Bumping the suffix
// invalidates everything sealed or signed with the previous subkey.
const (
	EncryptionKeyInfo = "vault-item-encryption-v1"
	SigningKeyInfo    = "history-signing-v1"
)

// ParseAlgorithm validates a configured algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AESGCM, ChaCha20:
		return Algorithm(name), nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
