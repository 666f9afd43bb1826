package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/core"
	"github.com/jawat-my/saferoute/utils"
)

var (
	initServerless sync.Once
	initErr        error
	serverlessMux  *http.ServeMux
	muxMutex       sync.RWMutex
)

// ServerlessHandler is the single serverless entry point for the relay.
// Dependencies are wired once per instance and reused across invocations.
func ServerlessHandler(w http.ResponseWriter, r *http.Request) {
	// CORS is answered before initialization so preflights stay cheap.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	initServerless.Do(func() {
		cfg, err := serverlessConfig()
		if err != nil {
			initErr = err
			return
		}
		deps, _, err := core.InitializeDependencies(context.Background(), cfg)
		if err != nil {
			initErr = err
			return
		}
		serverlessMux = createServerlessMux(api.NewRelayService(deps))
	})

	if initErr != nil {
		utils.Error("Serverless initialization failed: %v", initErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	muxMutex.RLock()
	mux := serverlessMux
	muxMutex.RUnlock()

	if mux == nil {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	mux.ServeHTTP(w, r)
}

// serverlessConfig builds the runtime config from the environment alone.
// DATABASE_URL picks the storage driver by its scheme; without it the
// instance runs on in-memory SQLite, since serverless filesystems are
// ephemeral.
func serverlessConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := config.FromEnv(cfg); err != nil {
		return nil, err
	}
	if dsn := os.Getenv(constants.EnvDatabaseURL); dsn != "" {
		driver := constants.StorageDriverSQLite
		if strings.HasPrefix(dsn, "postgres") {
			driver = constants.StorageDriverPostgres
		}
		cfg.Storage = config.StorageConfig{Driver: driver, DSN: dsn}
	} else {
		cfg.Storage = config.StorageConfig{Driver: constants.StorageDriverSQLite, DSN: ":memory:"}
	}
	// The instance's temp dir is the only writable path on most platforms.
	cfg.Blob = config.BlobConfig{
		Driver:    "filesystem",
		Directory: filepath.Join(os.TempDir(), "saferoute-archive"),
	}
	return cfg, nil
}

// createServerlessMux registers the operation handlers, honoring the
// endpoint filter when one is configured.
func createServerlessMux(svc api.RelayService) *http.ServeMux {
	mux := http.NewServeMux()

	endpoints := strings.TrimSpace(os.Getenv(constants.EnvEndpoints))
	if endpoints != "" {
		ids := make([]string, 0)
		for _, id := range strings.Split(endpoints, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
		if len(ids) > 0 {
			api.GenerateHTTPHandlersForOperations(mux, svc, api.GetOperationsByIDs(ids))
		} else {
			api.GenerateHTTPHandlers(mux, svc)
		}
	} else {
		api.GenerateHTTPHandlers(mux, svc)
	}

	// Health probes are served regardless of the endpoint filter.
	mux.HandleFunc(constants.PathHealthz, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.Write([]byte(constants.HealthCheckResponse))
	})
	mux.HandleFunc(constants.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.Write([]byte(constants.HealthOKResponse))
	})

	return mux
}

// ResetServerlessMux resets the cached serverless state (for testing).
func ResetServerlessMux() {
	muxMutex.Lock()
	defer muxMutex.Unlock()

	initServerless = sync.Once{}
	initErr = nil
	serverlessMux = nil
}
