package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/schema"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
)

// relaySpec describes one passthrough relay route: decode the request, call
// the upstream once, and mirror its reply byte for byte. The near-identical
// legacy handlers collapse into these three values plus a shared handler.
type relaySpec struct {
	operation string
	method    string
	call      func(ctx context.Context, svc RelayService, r *http.Request) (*upstream.RawResult, error)
}

// handler builds the HTTP handler for a passthrough route. Only transport
// failures map to the error taxonomy; upstream non-2xx replies pass through
// with their own status and body.
func (spec relaySpec) handler() func(http.ResponseWriter, *http.Request, RelayService) {
	return func(w http.ResponseWriter, r *http.Request, svc RelayService) {
		if r.Method != spec.method {
			writeMethodNotAllowed(w, r)
			return
		}
		raw, err := spec.call(r.Context(), svc, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRaw(w, r, raw)
	}
}

// createTableCall feeds the table-creation relay.
func createTableCall(ctx context.Context, svc RelayService, r *http.Request) (*upstream.RawResult, error) {
	var args TableRelayArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		return nil, badRequest(err)
	}
	return svc.CreateTable(ctx, args.TableName, args.Input, args.Output)
}

// createRowCall feeds the add-row relay.
func createRowCall(ctx context.Context, svc RelayService, r *http.Request) (*upstream.RawResult, error) {
	var args RowCreateArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		return nil, badRequest(err)
	}
	return svc.CreateRow(ctx, args.Input)
}

// listRowsCall feeds the row-listing relay; caller query params override
// the fixed defaults.
func listRowsCall(ctx context.Context, svc RelayService, r *http.Request) (*upstream.RawResult, error) {
	return svc.ListRows(ctx, r.URL.Query())
}

// badRequest tags a body decode failure for the 400 mapping.
func badRequest(err error) error {
	return fmt.Errorf("%w: %v", upstream.ErrBadRequest, err)
}

// routeEmergencyHandler serves the two-step decode then route endpoint.
// The body is schema-validated before any upstream call; the response is
// the reshaped routing envelope rather than a passthrough.
func routeEmergencyHandler(w http.ResponseWriter, r *http.Request, svc RelayService) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
		return
	}
	if err := schema.ValidateIntake(body); err != nil {
		utils.DebugCtx(r.Context(), "Intake rejected", "error", err)
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
		return
	}
	var req model.IntakeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
		return
	}

	env, err := svc.RouteEmergency(r.Context(), req.Input)
	if err != nil {
		status := statusForError(err)
		if env == nil || status == http.StatusInternalServerError {
			writeInternalError(w, r, err)
			return
		}
		// The envelope already carries jamai_status and any partial
		// decode output; only the status code reflects the taxonomy.
		writeResponse(w, r, httpResponse{StatusCode: status, Data: env})
		return
	}
	writeResponse(w, r, httpResponse{StatusCode: http.StatusOK, Data: env})
}

// analyzeHandler serves the submit-or-poll analysis endpoint.
func analyzeHandler(w http.ResponseWriter, r *http.Request, svc RelayService) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r)
		return
	}
	var args AnalyzeArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
		return
	}
	if args.UserInput == "" && args.RowID == "" {
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseMissingInput})
		return
	}
	result, err := svc.Analyze(r.Context(), args.UserInput, args.LocationDetails, args.RowID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, httpResponse{StatusCode: http.StatusOK, Data: result})
}

// routeHandler serves the row-backed routing endpoint. Upstream failures
// degrade to the local fallback analysis, so the reply is always 200.
func routeHandler(w http.ResponseWriter, r *http.Request, svc RelayService) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r)
		return
	}
	var args RouteArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
		return
	}
	result := svc.Route(r.Context(), args.UserInput, args.LocationDetails, args.CreatedAt)
	writeResponse(w, r, httpResponse{StatusCode: http.StatusOK, Data: result})
}
