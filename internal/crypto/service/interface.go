// Package service provides the AEAD ciphers, key loading and subkey derivation that protect
// vault secrets at rest.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt seals plaintext with optional AAD and returns the ciphertext and a fresh nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length in bytes.
	NonceSize() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// SecretCipher turns plaintext secret strings into opaque storage strings and back.
//
// The empty string means "absent" and maps to itself in both directions. Decrypt never
// panics: on any failure it returns "" and cryptoDomain.ErrDecryptionFailed.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// KMSService opens keepers for external key management services.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI (gcpkms://, awskms://, azurekeyvault://,
	// hashivault://, base64key://).
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
