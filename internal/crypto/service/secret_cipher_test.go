package service

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

func newTestSecretCipher(t *testing.T, fill byte, alg cryptoDomain.Algorithm) SecretCipher {
	t.Helper()
	key, err := cryptoDomain.NewCipherKey(bytes.Repeat([]byte{fill}, cryptoDomain.KeySize))
	require.NoError(t, err)

	cipher, err := NewSecretCipherFromKey(NewAEADManager(), key, alg)
	require.NoError(t, err)
	return cipher
}

func TestSecretCipher_RoundTrip(t *testing.T) {
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			cipher := newTestSecretCipher(t, 1, alg)

			for _, plaintext := range []string{"hunter2", "JBSWY3DPEHPK3PXP", "pässwörd ✓", " "} {
				ciphertext, err := cipher.Encrypt(plaintext)
				require.NoError(t, err)
				assert.NotEqual(t, plaintext, ciphertext)

				decrypted, err := cipher.Decrypt(ciphertext)
				require.NoError(t, err)
				assert.Equal(t, plaintext, decrypted)
			}
		})
	}
}

func TestSecretCipher_EmptyIsAbsent(t *testing.T) {
	cipher := newTestSecretCipher(t, 1, cryptoDomain.AESGCM)

	ciphertext, err := cipher.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", ciphertext)

	plaintext, err := cipher.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", plaintext)
}

func TestSecretCipher_NonDeterministic(t *testing.T) {
	cipher := newTestSecretCipher(t, 1, cryptoDomain.AESGCM)

	first, err := cipher.Encrypt("hunter2")
	require.NoError(t, err)
	second, err := cipher.Encrypt("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSecretCipher_DecryptFailures(t *testing.T) {
	cipher := newTestSecretCipher(t, 1, cryptoDomain.AESGCM)
	other := newTestSecretCipher(t, 2, cryptoDomain.AESGCM)

	valid, err := cipher.Encrypt("hunter2")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(valid)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		cipher     SecretCipher
		ciphertext string
	}{
		{"wrong key", other, valid},
		{"tampered", cipher, tampered},
		{"not base64", cipher, "%%%not-base64%%%"},
		{"too short", cipher, base64.StdEncoding.EncodeToString([]byte("short"))},
		{"nonce only", cipher, base64.StdEncoding.EncodeToString(make([]byte, 12))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var plaintext string
			assert.NotPanics(t, func() {
				plaintext, err = tt.cipher.Decrypt(tt.ciphertext)
			})
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			assert.Equal(t, "", plaintext)
		})
	}
}

func TestNewSecretCipherFromKey_UnsupportedAlgorithm(t *testing.T) {
	key, err := cryptoDomain.NewCipherKey(bytes.Repeat([]byte{1}, cryptoDomain.KeySize))
	require.NoError(t, err)

	_, err = NewSecretCipherFromKey(NewAEADManager(), key, cryptoDomain.Algorithm("des"))
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}
