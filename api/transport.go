package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/docs"
	"github.com/jawat-my/saferoute/telemetry"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
)

// AttachHTTPHandlers registers the full HTTP surface on the mux: system
// endpoints plus the generated operation handlers.
func AttachHTTPHandlers(mux *http.ServeMux, svc RelayService) {
	registerSystemEndpoints(mux)
	GenerateHTTPHandlers(mux, svc)
}

// registerSystemEndpoints registers the endpoints that sit outside the
// operation registry: health probes and metrics.
func registerSystemEndpoints(mux *http.ServeMux) {
	mux.HandleFunc(constants.PathHealthz, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		if _, err := w.Write([]byte(constants.HealthCheckResponse)); err != nil {
			utils.Error(constants.LogFailedWriteHealthCheck, err)
		}
	})

	mux.HandleFunc(constants.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		if _, err := w.Write([]byte(constants.HealthOKResponse)); err != nil {
			utils.Error(constants.LogFailedWriteHealthCheck, err)
		}
	})

	mux.Handle(constants.PathMetrics, telemetry.MetricsHandler())
}

// specHandler writes the embedded API document as markdown rather than a
// JSON-quoted string.
func specHandler(w http.ResponseWriter, r *http.Request, _ RelayService) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r)
		return
	}
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeMarkdown)
	if _, err := w.Write([]byte(docs.SafeRouteSpec)); err != nil {
		utils.Error(constants.LogFailedWriteSpec, err)
	}
}

// WithCORS answers preflight requests and stamps CORS headers on every
// response, matching the permissive policy of the original deployment.
// OPTIONS is answered 200 before any method guard runs.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// httpResponse represents a standardized HTTP response
type httpResponse struct {
	StatusCode int
	Data       any
	Error      string
}

// writeResponse standardizes JSON response writing with proper headers and error handling
func writeResponse(w http.ResponseWriter, r *http.Request, resp httpResponse) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(resp.StatusCode)

	var payload any
	if resp.Error != "" {
		payload = map[string]string{"error": resp.Error}
	} else {
		payload = resp.Data
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		utils.ErrorCtx(r.Context(), constants.LogFailedEncodeJSON, "error", err)
	}
}

// writeRaw mirrors an upstream reply byte for byte: its status code, its
// content type, its body.
func writeRaw(w http.ResponseWriter, r *http.Request, raw *upstream.RawResult) {
	w.Header().Set(constants.HeaderContentType, raw.ContentType())
	w.WriteHeader(raw.StatusCode)
	if _, err := w.Write(raw.Body); err != nil {
		utils.ErrorCtx(r.Context(), "Failed to write relay body", "error", err)
	}
}

// writeMethodNotAllowed writes the fixed 405 body. The body bytes are part
// of the relay contract, so this bypasses the JSON encoder.
func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusMethodNotAllowed)
	if _, err := w.Write([]byte(constants.MethodNotAllowedBody)); err != nil {
		utils.Error(constants.LogWriteFailed, err)
	}
}

// writeInternalError logs the full error server-side and sends the fixed
// generic body. Clients never see stack traces or wrapped causes.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	utils.ErrorCtx(r.Context(), "Relay operation failed", "error", err)
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)
	if _, werr := w.Write([]byte(constants.InternalErrorBody)); werr != nil {
		utils.Error(constants.LogWriteFailed, werr)
	}
}

// writeError maps a tagged error to its response. Upstream failure classes
// get distinct codes with generic messages; anything unrecognized is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, upstream.ErrBadRequest):
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		utils.ErrorCtx(r.Context(), "Upstream unreachable", "error", err)
		writeResponse(w, r, httpResponse{StatusCode: http.StatusServiceUnavailable, Error: constants.ResponseUpstreamGone})
	case errors.Is(err, upstream.ErrUpstreamMalformed):
		utils.ErrorCtx(r.Context(), "Upstream reply unusable", "error", err)
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadGateway, Error: constants.ResponseUpstreamBadReply})
	default:
		writeInternalError(w, r, err)
	}
}

// statusForError is the taxonomy mapping for handlers that build their own
// response body.
func statusForError(err error) int {
	switch {
	case errors.Is(err, upstream.ErrBadMethod):
		return http.StatusMethodNotAllowed
	case errors.Is(err, upstream.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, upstream.ErrUpstreamMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
