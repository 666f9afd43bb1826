package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/core"
	"github.com/jawat-my/saferoute/telemetry"
	"github.com/jawat-my/saferoute/utils"
)

// shutdownTimeout bounds the drain of in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// NewHandler builds the complete relay handler: every operation route plus
// the system endpoints, wrapped in request telemetry and the permissive
// CORS policy the front end depends on.
func NewHandler(svc api.RelayService) http.Handler {
	mux := http.NewServeMux()
	api.AttachHTTPHandlers(mux, svc)
	return api.WithCORS(telemetry.WrapHandler("http", mux))
}

// StartServer runs the relay HTTP server until ctx is canceled or a
// termination signal arrives, then drains in-flight requests before
// returning.
func StartServer(ctx context.Context, cfg *config.Config, deps *core.Dependencies) error {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(api.NewRelayService(deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("saferoute listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		utils.Info("Received signal %v, shutting down", sig)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
