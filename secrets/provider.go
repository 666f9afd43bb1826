package secrets

import (
	"context"
	"errors"
)

// ErrSecretNotFound is wrapped by providers when a key has no value.
var ErrSecretNotFound = errors.New("secret not found")

// SecretsProvider resolves named secrets such as upstream PATs.
type SecretsProvider interface {
	// GetSecret retrieves a single secret by key.
	GetSecret(ctx context.Context, key string) (string, error)

	// Type identifies the backing driver.
	Type() string

	// Close releases provider resources.
	Close() error
}
