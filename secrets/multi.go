package secrets

import (
	"context"
	"errors"
	"fmt"
)

// MultiSecretsProvider implements SecretsProvider by trying a chain of
// providers in order until one resolves the key. It lets deployed
// environments serve tokens from AWS Secrets Manager while local runs
// fall back to plain environment variables.
type MultiSecretsProvider struct {
	providers []SecretsProvider
}

var _ SecretsProvider = (*MultiSecretsProvider)(nil)

// NewMultiSecretsProvider creates a failover chain over the given providers.
func NewMultiSecretsProvider(providers ...SecretsProvider) *MultiSecretsProvider {
	return &MultiSecretsProvider{providers: providers}
}

// GetSecret tries each provider in order and returns the first hit.
func (m *MultiSecretsProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if len(m.providers) == 0 {
		return "", fmt.Errorf("%w: no providers configured", ErrSecretNotFound)
	}

	var errs []error
	for _, p := range m.providers {
		value, err := p.GetSecret(ctx, key)
		if err == nil {
			return value, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Type(), err))
	}
	return "", fmt.Errorf("secret %s not resolved by any provider: %w", key, errors.Join(errs...))
}

// Type returns the provider type identifier
func (m *MultiSecretsProvider) Type() string {
	return "multi"
}

// Close closes every provider in the chain, keeping the first error.
func (m *MultiSecretsProvider) Close() error {
	var firstErr error
	for _, p := range m.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
