package service

import (
	"encoding/base64"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

// secretCipher seals secret strings as base64(nonce || ciphertext || tag).
type secretCipher struct {
	aead AEAD
}

// NewSecretCipher creates a SecretCipher over aead.
func NewSecretCipher(aead AEAD) SecretCipher {
	return &secretCipher{aead: aead}
}

// NewSecretCipherFromKey derives the encryption subkey from key and builds a SecretCipher
// using alg.
func NewSecretCipherFromKey(
	manager AEADManager,
	key *cryptoDomain.CipherKey,
	alg cryptoDomain.Algorithm,
) (SecretCipher, error) {
	subkey, err := DeriveKey(key, cryptoDomain.EncryptionKeyInfo)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(subkey)

	aead, err := manager.CreateCipher(subkey, alg)
	if err != nil {
		return nil, err
	}

	return NewSecretCipher(aead), nil
}

// Encrypt seals plaintext. Encrypting the same value twice yields different outputs.
func (s *secretCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	ciphertext, nonce, err := s.aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(nonce)+len(ciphertext))
	sealed = append(sealed, nonce...)
	sealed = append(sealed, ciphertext...)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (s *secretCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	nonceSize := s.aead.NonceSize()
	if len(sealed) <= nonceSize {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := s.aead.Decrypt(sealed[nonceSize:], sealed[:nonceSize], nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}
