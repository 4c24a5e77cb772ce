package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

// aeadConstructors maps every supported algorithm to its stdlib or x/crypto constructor.
var aeadConstructors = map[cryptoDomain.Algorithm]func(key []byte) (cipher.AEAD, error){
	cryptoDomain.AESGCM: func(key []byte) (cipher.AEAD, error) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	},
	cryptoDomain.ChaCha20: chacha20poly1305.New,
}

// AEADCipher adapts a cipher.AEAD to the AEAD interface. Each Encrypt draws a fresh random
// nonce, so a single instance is safe to share between goroutines.
type AEADCipher struct {
	alg  cryptoDomain.Algorithm
	aead cipher.AEAD
}

// NewAEADCipher builds the cipher for alg. The key must be exactly 32 bytes.
func NewAEADCipher(key []byte, alg cryptoDomain.Algorithm) (*AEADCipher, error) {
	construct, ok := aeadConstructors[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := construct(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cipher: %w", alg, err)
	}
	return &AEADCipher{alg: alg, aead: aead}, nil
}

// Algorithm reports which AEAD backs the cipher.
func (c *AEADCipher) Algorithm() cryptoDomain.Algorithm {
	return c.alg
}

// Encrypt seals plaintext, authenticating aad when it is not nil.
func (c *AEADCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Decrypt opens ciphertext with the aad used by Encrypt. A malformed nonce, a wrong key and
// tampered input all surface as ErrDecryptionFailed.
func (c *AEADCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// NonceSize returns 12 for both supported algorithms.
func (c *AEADCipher) NonceSize() int {
	return c.aead.NonceSize()
}

// AEADManagerService implements AEADManager on top of NewAEADCipher.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrUnsupportedAlgorithm for unknown algorithms and ErrInvalidKeySize for
// keys that are not 32 bytes.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	return NewAEADCipher(key, alg)
}
