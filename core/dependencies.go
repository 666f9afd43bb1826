package core

import (
	"context"
	"io"
	"strings"

	"github.com/jawat-my/saferoute/blob"
	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/directory"
	"github.com/jawat-my/saferoute/event"
	"github.com/jawat-my/saferoute/secrets"
	"github.com/jawat-my/saferoute/storage"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
)

// Dependencies bundles every wired subsystem the relay operations use.
// Handlers receive it explicitly; there is no package-level state.
type Dependencies struct {
	Config   *config.Config
	Store    storage.Storage
	Blob     blob.BlobStore
	Bus      event.EventBus
	Secrets  secrets.SecretsProvider
	Shelters directory.ShelterSource
	Jawat    *upstream.JawatClient
	Jamai    *upstream.JamaiClient
}

// GetStoreFromConfig returns a storage instance based on config. Driver
// failures fall back to in-memory storage with a warning: relay records are
// a side channel and must never take the relay down.
func GetStoreFromConfig(cfg *config.Config) (storage.Storage, error) {
	driver := ""
	if cfg != nil {
		driver = strings.ToLower(cfg.Storage.Driver)
	}
	switch driver {
	case "", constants.StorageDriverSQLite:
		dsn := config.DefaultSQLiteDSN
		if cfg != nil && cfg.Storage.DSN != "" {
			dsn = cfg.Storage.DSN
		}
		store, err := storage.NewSqliteStorage(dsn)
		if err != nil {
			utils.WarnCtx(context.Background(), "Failed to create sqlite storage, using in-memory fallback", "error", err)
			return storage.NewMemoryStorage(), nil
		}
		return store, nil
	case constants.StorageDriverPostgres:
		store, err := storage.NewPostgresStorage(cfg.Storage.DSN)
		if err != nil {
			utils.WarnCtx(context.Background(), "Failed to create postgres storage, using in-memory fallback", "error", err)
			return storage.NewMemoryStorage(), nil
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, utils.Errorf("unsupported storage driver: %s (supported: sqlite, postgres, memory)", cfg.Storage.Driver)
	}
}

// InitializeDependencies wires storage, events, blobs, secrets, the shelter
// directory, and both upstream clients from config. Returns the bundle and a
// cleanup function for shutdown.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	store, err := GetStoreFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	bus, err := event.NewEventBusFromConfig(&cfg.Event)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create event bus, using in-memory fallback", "error", err)
		bus = event.NewInProcEventBus()
	}

	blobStore, err := blob.NewDefaultBlobStore(ctx, &cfg.Blob)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create blob store, archiving disabled", "error", err)
		blobStore = nil
	}

	provider, err := secrets.NewSecretsProvider(ctx, &cfg.Secrets)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create secrets provider, using environment fallback", "error", err)
		provider = secrets.NewEnvSecretsProvider("")
	}
	resolvePATs(ctx, cfg, provider)

	deps := &Dependencies{
		Config:   cfg,
		Store:    store,
		Blob:     blobStore,
		Bus:      bus,
		Secrets:  provider,
		Shelters: directory.NewFactory().CreateStandardManager(ctx, cfg),
		Jawat:    upstream.NewJawatClient(&cfg.Upstream),
		Jamai:    upstream.NewJamaiClient(&cfg.Upstream),
	}

	cleanup := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				utils.Error("Failed to close storage: %v", err)
			}
		}
		if blobStore != nil {
			if closer, ok := blobStore.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					utils.Error("Failed to close blob store: %v", err)
				}
			}
		}
		if provider != nil {
			if err := provider.Close(); err != nil {
				utils.Error("Failed to close secrets provider: %v", err)
			}
		}
	}

	return deps, cleanup, nil
}

// resolvePATs fills empty upstream PATs from the secrets provider. Missing
// secrets are not fatal; unauthenticated deployments exist in dev.
func resolvePATs(ctx context.Context, cfg *config.Config, provider secrets.SecretsProvider) {
	if provider == nil {
		return
	}
	if cfg.Upstream.JawatPAT == "" {
		if v, err := provider.GetSecret(ctx, constants.EnvJawatPAT); err == nil && v != "" {
			cfg.Upstream.JawatPAT = v
		} else if err != nil {
			utils.DebugCtx(ctx, "No Jawat PAT in secrets provider", "error", err)
		}
	}
	if cfg.Upstream.JamaiPAT == "" {
		if v, err := provider.GetSecret(ctx, constants.EnvJamaiPAT); err == nil && v != "" {
			cfg.Upstream.JamaiPAT = v
		} else if err != nil {
			utils.DebugCtx(ctx, "No JamAI PAT in secrets provider", "error", err)
		}
	}
}
