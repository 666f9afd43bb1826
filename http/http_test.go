package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/core"
)

func testDeps() *core.Dependencies {
	return &core.Dependencies{Config: &config.Config{}}
}

func TestNewHandler_ServesHealthWithCORS(t *testing.T) {
	handler := NewHandler(api.NewRelayService(testDeps()))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w.Body.String() != `{"status":"healthy"}` {
		t.Errorf("Unexpected health body: %s", w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on every response")
	}
}

func TestNewHandler_AnswersPreflight(t *testing.T) {
	handler := NewHandler(api.NewRelayService(testDeps()))

	req := httptest.NewRequest(http.MethodOptions, "/api/jamai-create", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Expected preflight to carry allowed methods")
	}
}

func TestStartServer_InvalidAddress(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.Host = "256.256.256.256"
	cfg.HTTP.Port = 1

	if err := StartServer(context.Background(), cfg, testDeps()); err == nil {
		t.Error("Expected an error for an unusable listen address")
	}
}

func TestStartServer_ShutsDownOnContextCancel(t *testing.T) {
	cfg := &config.Config{} // port 0 picks a free port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, cfg, testDeps())
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Server did not shut down after context cancel")
	}
}
