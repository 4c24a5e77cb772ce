package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
	cryptoService "github.com/allisson/teamvault/internal/crypto/service"
	historyService "github.com/allisson/teamvault/internal/history/service"
)

// KMSService returns the gocloud.dev backed KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// CipherKey returns the process cipher key loaded from CIPHER_KEY, unwrapped through
// KMS_KEY_URI when one is configured.
func (c *Container) CipherKey() (*cryptoDomain.CipherKey, error) {
	var err error
	c.cipherKeyInit.Do(func() {
		c.cipherKey, err = c.initCipherKey()
		if err != nil {
			c.initErrors["cipherKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cipherKey"]; exists {
		return nil, storedErr
	}
	return c.cipherKey, nil
}

// SecretCipher returns the cipher sealing item secrets at rest.
func (c *Container) SecretCipher() (cryptoService.SecretCipher, error) {
	var err error
	c.secretCipherInit.Do(func() {
		c.secretCipher, err = c.initSecretCipher()
		if err != nil {
			c.initErrors["secretCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretCipher"]; exists {
		return nil, storedErr
	}
	return c.secretCipher, nil
}

// HistorySigner returns the signer for history entries, keyed by a subkey of the cipher key.
func (c *Container) HistorySigner() (historyService.Signer, error) {
	var err error
	c.signerInit.Do(func() {
		c.signer, err = c.initHistorySigner()
		if err != nil {
			c.initErrors["signer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signer"]; exists {
		return nil, storedErr
	}
	return c.signer, nil
}

func (c *Container) initCipherKey() (*cryptoDomain.CipherKey, error) {
	key, err := cryptoService.LoadCipherKey(
		context.Background(),
		c.KMSService(),
		c.config.CipherKey,
		c.config.KMSKeyURI,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cipher key: %w", err)
	}
	return key, nil
}

func (c *Container) initSecretCipher() (cryptoService.SecretCipher, error) {
	key, err := c.CipherKey()
	if err != nil {
		return nil, err
	}

	alg, err := cryptoDomain.ParseAlgorithm(c.config.CipherAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid cipher algorithm %q: %w", c.config.CipherAlgorithm, err)
	}

	cipher, err := cryptoService.NewSecretCipherFromKey(cryptoService.NewAEADManager(), key, alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret cipher: %w", err)
	}
	return cipher, nil
}

func (c *Container) initHistorySigner() (historyService.Signer, error) {
	key, err := c.CipherKey()
	if err != nil {
		return nil, err
	}

	subkey, err := cryptoService.DeriveKey(key, cryptoDomain.SigningKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(subkey)

	return historyService.NewSigner(subkey), nil
}
