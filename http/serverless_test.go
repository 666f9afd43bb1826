package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jawat-my/saferoute/constants"
)

// clearServerlessEnv pins the env so a developer's shell cannot leak into
// the serverless init under test.
func clearServerlessEnv(t *testing.T) {
	t.Setenv(constants.EnvDatabaseURL, "")
	t.Setenv(constants.EnvEndpoints, "")
}

// TestServerlessEndpointFiltering verifies that SAFEROUTE_ENDPOINTS narrows
// the served operations while the health probes stay up.
func TestServerlessEndpointFiltering(t *testing.T) {
	tests := []struct {
		name            string
		endpointsEnvVar string
		expectedAllowed []string
		expectedBlocked []string
	}{
		{
			name:            "no filter - all endpoints",
			endpointsEnvVar: "",
			expectedAllowed: []string{constants.PathHealthz, constants.PathHealth, constants.PathRecords, constants.PathSpec, constants.PathRowsList},
			expectedBlocked: []string{},
		},
		{
			name:            "records only",
			endpointsEnvVar: "listRecords",
			expectedAllowed: []string{constants.PathHealthz, constants.PathHealth, constants.PathRecords},
			expectedBlocked: []string{constants.PathAnalyze, constants.PathRowsList, constants.PathSpec},
		},
		{
			name:            "routing endpoints only",
			endpointsEnvVar: "routeEmergency, analyze",
			expectedAllowed: []string{constants.PathHealthz, constants.PathJamaiCreate, constants.PathAnalyze},
			expectedBlocked: []string{constants.PathRecords, constants.PathRowsList},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServerlessEnv(t)
			if tt.endpointsEnvVar != "" {
				t.Setenv(constants.EnvEndpoints, tt.endpointsEnvVar)
			}
			// Reset so initialization picks up this test's environment.
			ResetServerlessMux()

			for _, endpoint := range tt.expectedAllowed {
				req := httptest.NewRequest(http.MethodGet, endpoint, nil)
				w := httptest.NewRecorder()
				ServerlessHandler(w, req)
				if w.Code == http.StatusNotFound {
					t.Errorf("Expected endpoint %s to be allowed, got 404", endpoint)
				}
			}

			for _, endpoint := range tt.expectedBlocked {
				req := httptest.NewRequest(http.MethodGet, endpoint, nil)
				w := httptest.NewRecorder()
				ServerlessHandler(w, req)
				if w.Code != http.StatusNotFound {
					t.Errorf("Expected endpoint %s to be blocked, got %d", endpoint, w.Code)
				}
			}
		})
	}
	ResetServerlessMux()
}

func TestServerlessHandler_AnswersPreflightBeforeInit(t *testing.T) {
	clearServerlessEnv(t)
	ResetServerlessMux()

	req := httptest.NewRequest(http.MethodOptions, constants.PathJamaiCreate, nil)
	w := httptest.NewRecorder()
	ServerlessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight")
	}
	ResetServerlessMux()
}

func TestServerlessHandler_HealthBody(t *testing.T) {
	clearServerlessEnv(t)
	ResetServerlessMux()

	req := httptest.NewRequest(http.MethodGet, constants.PathHealthz, nil)
	w := httptest.NewRecorder()
	ServerlessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Body.String() != constants.HealthCheckResponse {
		t.Errorf("Unexpected health body: %s", w.Body.String())
	}
	ResetServerlessMux()
}

func TestServerlessConfig(t *testing.T) {
	t.Run("postgres url picks postgres driver", func(t *testing.T) {
		t.Setenv(constants.EnvDatabaseURL, "postgres://user:pw@host/db")
		cfg, err := serverlessConfig()
		if err != nil {
			t.Fatalf("serverlessConfig failed: %v", err)
		}
		if cfg.Storage.Driver != constants.StorageDriverPostgres {
			t.Errorf("Expected postgres driver, got %s", cfg.Storage.Driver)
		}
		if cfg.Storage.DSN != "postgres://user:pw@host/db" {
			t.Errorf("Expected DSN preserved, got %s", cfg.Storage.DSN)
		}
	})

	t.Run("file url picks sqlite driver", func(t *testing.T) {
		t.Setenv(constants.EnvDatabaseURL, "/tmp/relay.db")
		cfg, err := serverlessConfig()
		if err != nil {
			t.Fatalf("serverlessConfig failed: %v", err)
		}
		if cfg.Storage.Driver != constants.StorageDriverSQLite {
			t.Errorf("Expected sqlite driver, got %s", cfg.Storage.Driver)
		}
	})

	t.Run("no url falls back to in-memory sqlite", func(t *testing.T) {
		t.Setenv(constants.EnvDatabaseURL, "")
		cfg, err := serverlessConfig()
		if err != nil {
			t.Fatalf("serverlessConfig failed: %v", err)
		}
		if cfg.Storage.Driver != constants.StorageDriverSQLite || cfg.Storage.DSN != ":memory:" {
			t.Errorf("Expected in-memory sqlite, got %s %s", cfg.Storage.Driver, cfg.Storage.DSN)
		}
		// Archives land in the instance temp dir, the only writable path.
		if !strings.Contains(cfg.Blob.Directory, "saferoute-archive") {
			t.Errorf("Expected temp-dir archive directory, got %s", cfg.Blob.Directory)
		}
	})
}
