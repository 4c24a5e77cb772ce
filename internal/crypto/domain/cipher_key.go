package domain

import (
	"context"
	"encoding/base64"
	"fmt"
)

// CipherKey is the process-wide key that protects vault secrets. It is loaded once at startup
// and passed explicitly to the components that need it; there is no package-level key.
type CipherKey struct {
	Key []byte
}

// NewCipherKey copies key into a new CipherKey after checking its size.
func NewCipherKey(key []byte) (*CipherKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: cipher key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	buf := make([]byte, KeySize)
	copy(buf, key)
	return &CipherKey{Key: buf}, nil
}

// ParseCipherKey decodes a base64 encoded raw key.
func ParseCipherKey(encoded string) (*CipherKey, error) {
	if encoded == "" {
		return nil, ErrCipherKeyNotSet
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCipherKeyBase64, err)
	}
	defer Zero(raw)

	return NewCipherKey(raw)
}

// Close clears the key material.
func (k *CipherKey) Close() {
	if k == nil {
		return
	}
	Zero(k.Key)
	k.Key = nil
}

// KMSKeeper wraps and unwraps key material with an external key management service.
// *secrets.Keeper from gocloud.dev satisfies it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
