package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	validKey := randomKey(t)

	t.Run("create AES-GCM cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AESGCM)
		require.NoError(t, err)
		require.IsType(t, &AEADCipher{}, cipher)
		assert.Equal(t, cryptoDomain.AESGCM, cipher.(*AEADCipher).Algorithm())
	})

	t.Run("create ChaCha20-Poly1305 cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.ChaCha20)
		require.NoError(t, err)
		require.IsType(t, &AEADCipher{}, cipher)
		assert.Equal(t, cryptoDomain.ChaCha20, cipher.(*AEADCipher).Algorithm())
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(validKey, cryptoDomain.Algorithm("AES-GCM"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	for _, size := range []int{0, 16, 64} {
		_, err := manager.CreateCipher(make([]byte, size), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "size %d", size)
	}
}

func TestAEAD_RoundTrip(t *testing.T) {
	manager := NewAEADManager()
	key := randomKey(t)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			cipher, err := manager.CreateCipher(key, alg)
			require.NoError(t, err)
			assert.Equal(t, 12, cipher.NonceSize())

			plaintext := []byte("hunter2")
			aad := []byte("item")

			ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, nonce, 12)
			assert.Len(t, ciphertext, len(plaintext)+16)

			decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)

			_, err = cipher.Decrypt(ciphertext, nonce, []byte("other"))
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

			tampered := append([]byte{}, ciphertext...)
			tampered[0] ^= 0xFF
			_, err = cipher.Decrypt(tampered, nonce, aad)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

			_, err = cipher.Decrypt(ciphertext, nonce[:4], aad)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		})
	}
}

func TestAEAD_UniqueNonces(t *testing.T) {
	cipher, err := NewAEADCipher(randomKey(t), cryptoDomain.AESGCM)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for range 100 {
		_, nonce, err := cipher.Encrypt([]byte("x"), nil)
		require.NoError(t, err)
		_, dup := seen[string(nonce)]
		require.False(t, dup)
		seen[string(nonce)] = struct{}{}
	}
}

func TestAEAD_CrossAlgorithm(t *testing.T) {
	key := randomKey(t)

	aesCipher, err := NewAEADCipher(key, cryptoDomain.AESGCM)
	require.NoError(t, err)
	chachaCipher, err := NewAEADCipher(key, cryptoDomain.ChaCha20)
	require.NoError(t, err)

	ciphertext, nonce, err := aesCipher.Encrypt([]byte("vault"), nil)
	require.NoError(t, err)

	_, err = chachaCipher.Decrypt(ciphertext, nonce, nil)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}
