package domain

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCipherKey(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, KeySize)

	t.Run("valid key", func(t *testing.T) {
		key, err := ParseCipherKey(base64.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, key.Key)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseCipherKey("")
		assert.ErrorIs(t, err, ErrCipherKeyNotSet)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := ParseCipherKey("not base64!!")
		assert.ErrorIs(t, err, ErrInvalidCipherKeyBase64)
	})

	t.Run("wrong size", func(t *testing.T) {
		_, err := ParseCipherKey(base64.StdEncoding.EncodeToString(raw[:16]))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})
}

func TestNewCipherKey_CopiesInput(t *testing.T) {
	raw := bytes.Repeat([]byte{1}, KeySize)

	key, err := NewCipherKey(raw)
	require.NoError(t, err)

	raw[0] = 9
	assert.Equal(t, byte(1), key.Key[0])
}

func TestCipherKey_Close(t *testing.T) {
	key, err := NewCipherKey(bytes.Repeat([]byte{3}, KeySize))
	require.NoError(t, err)

	buf := key.Key
	key.Close()

	assert.Nil(t, key.Key)
	assert.Equal(t, make([]byte, KeySize), buf)

	var nilKey *CipherKey
	assert.NotPanics(t, func() { nilKey.Close() })
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("aes-gcm")
	require.NoError(t, err)
	assert.Equal(t, AESGCM, alg)

	alg, err = ParseAlgorithm("chacha20-poly1305")
	require.NoError(t, err)
	assert.Equal(t, ChaCha20, alg)

	_, err = ParseAlgorithm("AES-GCM")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
