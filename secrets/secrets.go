package secrets

import (
	"context"
	"fmt"
	"strings"

	"github.com/jawat-my/saferoute/config"
)

// NewSecretsProvider creates a secrets provider from saferoute configuration.
// The aws-sm driver gets an environment fallback chained behind it so local
// overrides keep working in deployed environments.
func NewSecretsProvider(ctx context.Context, cfg *config.SecretsConfig) (SecretsProvider, error) {
	if cfg == nil {
		// Default to environment variables
		return NewEnvSecretsProvider(""), nil
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "env":
		return NewEnvSecretsProvider(cfg.Prefix), nil
	case "aws-sm", "aws":
		if cfg.Region == "" {
			return nil, fmt.Errorf("region is required for AWS Secrets Manager")
		}
		awsProvider, err := NewAWSSecretsProvider(ctx, cfg.Region, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return NewMultiSecretsProvider(awsProvider, NewEnvSecretsProvider(cfg.Prefix)), nil
	default:
		return nil, fmt.Errorf("unsupported secrets driver: %s", cfg.Driver)
	}
}
