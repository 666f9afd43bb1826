package api

import (
	"context"
	"net/url"
	"sort"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/core"
	"github.com/jawat-my/saferoute/directory"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/upstream"
)

// RelayService is the operation surface shared by the HTTP, CLI, and MCP
// transports. All state lives in the injected dependencies; handlers never
// touch globals.
type RelayService interface {
	// RouteEmergency runs the two-step decode then route pipeline.
	RouteEmergency(ctx context.Context, input model.IntakeInput) (*model.RoutingEnvelope, error)

	// CreateTable relays a gen-table creation and returns the upstream
	// reply untouched.
	CreateTable(ctx context.Context, tableName string, input, output map[string]string) (*upstream.RawResult, error)

	// CreateRow relays one row insert into the emergency routing table.
	CreateRow(ctx context.Context, input map[string]any) (*upstream.RawResult, error)

	// ListRows relays a row listing, overlaying caller params on the
	// fixed default query.
	ListRows(ctx context.Context, overrides url.Values) (*upstream.RawResult, error)

	// Analyze submits a new analysis row, or polls an existing one when
	// rowID is set.
	Analyze(ctx context.Context, userInput, locationDetails, rowID string) (*model.AnalyzeResult, error)

	// Route runs the row-backed routing with local fallback analysis.
	// Upstream failures degrade to the fallback, so there is no error path.
	Route(ctx context.Context, userInput, locationDetails, createdAt string) *model.RouteResult

	// ListRecords returns the most recent relay records.
	ListRecords(ctx context.Context, limit int) ([]*model.RelayRecord, error)

	// ListShelters queries the shelter directory.
	ListShelters(ctx context.Context, query string) ([]model.Shelter, error)

	// RunDiagnostics runs the five-step upstream diagnostic sequence.
	RunDiagnostics(ctx context.Context, input, location string) *core.DiagnosticsReport
}

// defaultService is the standard implementation backed by wired dependencies.
type defaultService struct {
	deps *core.Dependencies
}

// Interface compliance check
var _ RelayService = (*defaultService)(nil)

// NewRelayService creates a RelayService over the given dependencies.
func NewRelayService(deps *core.Dependencies) RelayService {
	return &defaultService{deps: deps}
}

func (s *defaultService) RouteEmergency(ctx context.Context, input model.IntakeInput) (*model.RoutingEnvelope, error) {
	return core.RouteEmergency(ctx, s.deps, input)
}

func (s *defaultService) CreateTable(ctx context.Context, tableName string, input, output map[string]string) (*upstream.RawResult, error) {
	payload := tableCreatePayload(tableName, input, output)
	raw, err := s.deps.Jamai.CreateTable(ctx, payload)
	core.RecordExchange(ctx, s.deps, constants.OpCreateTable, payload, relayResponse(raw), err)
	return raw, err
}

func (s *defaultService) CreateRow(ctx context.Context, input map[string]any) (*upstream.RawResult, error) {
	payload := model.RowAddRequest{
		TableID: constants.TableEmergencyRouting,
		Data:    []map[string]any{input},
	}
	raw, err := s.deps.Jamai.AddRows(ctx, payload)
	core.RecordExchange(ctx, s.deps, constants.OpCreateRow, payload, relayResponse(raw), err)
	return raw, err
}

func (s *defaultService) ListRows(ctx context.Context, overrides url.Values) (*upstream.RawResult, error) {
	query := upstream.DefaultListQuery()
	for key, values := range overrides {
		if len(values) > 0 && values[0] != "" {
			query.Set(key, values[0])
		}
	}
	raw, err := s.deps.Jamai.ListRows(ctx, query)
	core.RecordExchange(ctx, s.deps, constants.OpListRows, query.Encode(), relayResponse(raw), err)
	return raw, err
}

func (s *defaultService) Analyze(ctx context.Context, userInput, locationDetails, rowID string) (*model.AnalyzeResult, error) {
	if rowID != "" {
		return core.AnalyzePoll(ctx, s.deps, rowID), nil
	}
	return core.AnalyzeSubmit(ctx, s.deps, userInput, locationDetails)
}

func (s *defaultService) Route(ctx context.Context, userInput, locationDetails, createdAt string) *model.RouteResult {
	return core.RouteWithFallback(ctx, s.deps, userInput, locationDetails, createdAt)
}

func (s *defaultService) ListRecords(ctx context.Context, limit int) ([]*model.RelayRecord, error) {
	if s.deps.Store == nil {
		return nil, nil
	}
	return s.deps.Store.ListRecords(ctx, limit)
}

func (s *defaultService) ListShelters(ctx context.Context, query string) ([]model.Shelter, error) {
	if s.deps.Shelters == nil {
		return nil, nil
	}
	return s.deps.Shelters.ListShelters(ctx, directory.ListOptions{Query: query})
}

func (s *defaultService) RunDiagnostics(ctx context.Context, input, location string) *core.DiagnosticsReport {
	return core.RunDiagnostics(ctx, s.deps, input, location)
}

// tableCreatePayload reshapes the table relay body into the JamAI schema
// payload: input fields become plain columns, output fields LLM-generated
// ones. Keys are sorted so the upstream payload is deterministic.
func tableCreatePayload(tableName string, input, output map[string]string) model.TableCreateRequest {
	payload := model.TableCreateRequest{ID: tableName}
	for _, id := range sortedKeys(input) {
		payload.Cols = append(payload.Cols, model.TableColumn{ID: id, DType: input[id], ColumnType: "input"})
	}
	for _, id := range sortedKeys(output) {
		payload.Cols = append(payload.Cols, model.TableColumn{ID: id, DType: output[id], ColumnType: "LLM Output"})
	}
	return payload
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// relayResponse converts a raw upstream reply into a recordable shape.
func relayResponse(raw *upstream.RawResult) any {
	if raw == nil {
		return nil
	}
	return map[string]any{"status": raw.StatusCode, "body": string(raw.Body)}
}
