package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

// LoadCipherKey builds the process cipher key from its configured encoding. With an empty
// kmsKeyURI, encoded holds the raw key in base64. Otherwise encoded is a base64 KMS ciphertext
// that is unwrapped through the keeper for kmsKeyURI.
func LoadCipherKey(
	ctx context.Context,
	kms KMSService,
	encoded string,
	kmsKeyURI string,
) (*cryptoDomain.CipherKey, error) {
	if kmsKeyURI == "" {
		return cryptoDomain.ParseCipherKey(encoded)
	}

	if encoded == "" {
		return nil, cryptoDomain.ErrCipherKeyNotSet
	}

	wrapped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidCipherKeyBase64, err)
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = keeper.Close() }()

	raw, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap cipher key: %w", err)
	}
	defer cryptoDomain.Zero(raw)

	return cryptoDomain.NewCipherKey(raw)
}

// GenerateCipherKey returns a fresh random key encoded for CIPHER_KEY. When kmsKeyURI is set the
// key is wrapped by the keeper before encoding.
func GenerateCipherKey(ctx context.Context, kms KMSService, kmsKeyURI string) (string, error) {
	raw := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate cipher key: %w", err)
	}
	defer cryptoDomain.Zero(raw)

	if kmsKeyURI == "" {
		return base64.StdEncoding.EncodeToString(raw), nil
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	wrapped, err := keeper.Encrypt(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to wrap cipher key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// DeriveKey derives a 32-byte subkey from the cipher key with HKDF-SHA256. Distinct info strings
// give independent keys, so the encryption key never doubles as a signing key.
func DeriveKey(key *cryptoDomain.CipherKey, info string) ([]byte, error) {
	if key == nil || len(key.Key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	reader := hkdf.New(sha256.New, key.Key, nil, []byte(info))
	subkey := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(reader, subkey); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return subkey, nil
}
