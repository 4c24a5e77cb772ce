package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
)

// KMSSchemes lists the KMS_KEY_URI schemes with a registered keeper driver.
var KMSSchemes = []string{"awskms", "azurekeyvault", "base64key", "gcpkms", "hashivault"}

type kmsService struct{}

// NewKMSService returns a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper checks the URI scheme before handing it to gocloud.dev, so a typo in KMS_KEY_URI
// fails with the scheme named instead of a generic driver error.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	parsed, err := url.Parse(keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	if !slices.Contains(KMSSchemes, parsed.Scheme) {
		return nil, fmt.Errorf("failed to open KMS keeper: %w: %q", cryptoDomain.ErrUnsupportedKMSScheme, parsed.Scheme)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper for %s: %w", parsed.Scheme, err)
	}
	return keeper, nil
}
