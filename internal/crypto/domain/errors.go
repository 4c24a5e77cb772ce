package domain

import (
	"github.com/allisson/teamvault/internal/errors"
)

// Cryptographic error definitions.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD is not aes-gcm or chacha20-poly1305.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrCipherKeyNotSet indicates CIPHER_KEY is empty.
	ErrCipherKeyNotSet = errors.New("cipher key not set")

	// ErrInvalidCipherKeyBase64 indicates CIPHER_KEY is not valid standard base64.
	ErrInvalidCipherKeyBase64 = errors.New("invalid cipher key base64")

	// ErrUnsupportedKMSScheme indicates KMS_KEY_URI names a provider with no registered driver.
	ErrUnsupportedKMSScheme = errors.Wrap(errors.ErrInvalidInput, "unsupported kms key uri scheme")

	// ErrDecryptionFailed indicates a stored ciphertext could not be opened: wrong key,
	// tampering, truncation or bad encoding. The cause is never disclosed. Callers recover from
	// it locally by treating the field as unset.
	ErrDecryptionFailed = errors.New("decryption failed")
)
