package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/docs"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/spf13/cobra"
)

// OperationDefinition defines a single operation with all its metadata and implementation
type OperationDefinition struct {
	ID          string                                                             // Unique identifier
	Name        string                                                             // Display name
	Description string                                                             // Human readable description
	HTTPMethod  string                                                             // HTTP method (GET, POST, etc.)
	HTTPPath    string                                                             // HTTP path
	CLIUse      string                                                             // CLI command usage pattern
	CLIShort    string                                                             // CLI short description
	MCPName     string                                                             // MCP tool name (defaults to ID)
	ArgsType    reflect.Type                                                       // Type for request arguments
	Handler     func(ctx context.Context, svc RelayService, args any) (any, error) // Core implementation
	CLIHandler  func(cmd *cobra.Command, args []string, svc RelayService) error    // Optional custom CLI handler
	HTTPHandler func(w http.ResponseWriter, r *http.Request, svc RelayService)     // Optional custom HTTP handler
	MCPHandler  func(ctx context.Context, args any) (*mcp.ToolResponse, error)     // Optional custom MCP handler
	SkipHTTP    bool                                                               // Skip HTTP interface generation
	SkipMCP     bool                                                               // Skip MCP interface generation
	SkipCLI     bool                                                               // Skip CLI interface generation
}

// Argument types for the registered operations.
type EmptyArgs struct{}

// RouteEmergencyArgs is the CLI/MCP form of the two-step routing intake.
type RouteEmergencyArgs struct {
	UserInput string `json:"user_input" flag:"input" description:"Free-text situation report"`
	Location  string `json:"location" flag:"location" description:"Location details"`
}

// TableRelayArgs is the table-creation relay body. Input and Output map
// column ids to dtypes.
type TableRelayArgs struct {
	TableName string            `json:"tableName" flag:"table" description:"Gen table id"`
	Input     map[string]string `json:"input,omitempty" flag:"input" description:"Input columns as id:dtype JSON"`
	Output    map[string]string `json:"output,omitempty" flag:"output" description:"LLM output columns as id:dtype JSON"`
}

// RowCreateArgs is the add-row relay body.
type RowCreateArgs struct {
	Input map[string]any `json:"input" flag:"input" description:"Row fields as JSON"`
}

// RowListArgs overrides the fixed row listing query.
type RowListArgs struct {
	TableID string `json:"table_id,omitempty" flag:"table" description:"Gen table id"`
	Limit   int    `json:"limit,omitempty" flag:"limit" description:"Max rows"`
	OrderBy string `json:"order_by,omitempty" flag:"order-by" description:"Sort column"`
	Order   string `json:"order,omitempty" flag:"order" description:"asc or desc"`
}

// AnalyzeArgs selects submit (user_input set) or poll (row_id set).
type AnalyzeArgs struct {
	UserInput       string `json:"user_input,omitempty" flag:"input" description:"Free-text situation report"`
	LocationDetails string `json:"location_details,omitempty" flag:"location" description:"Location details"`
	RowID           string `json:"row_id,omitempty" flag:"row-id" description:"Row id to poll"`
}

// RouteArgs is the row-backed routing body.
type RouteArgs struct {
	UserInput       string `json:"user_input" flag:"input" description:"Free-text situation report"`
	LocationDetails string `json:"location_details" flag:"location" description:"Location details"`
	CreatedAt       string `json:"created_at,omitempty" flag:"created-at" description:"Client timestamp, passed through to the table row"`
}

// RecordListArgs limits the relay record listing.
type RecordListArgs struct {
	Limit int `json:"limit,omitempty" flag:"limit" description:"Max records"`
}

// ShelterListArgs filters the shelter directory.
type ShelterListArgs struct {
	Query string `json:"query,omitempty" flag:"query" description:"Name, feature, or constraint filter"`
}

// DiagnosticsArgs overrides the fixed probe scenario.
type DiagnosticsArgs struct {
	Input    string `json:"input,omitempty" flag:"input" description:"Probe situation text"`
	Location string `json:"location,omitempty" flag:"location" description:"Probe location"`
}

// Global operation registry
var operationRegistry = make(map[string]*OperationDefinition)

// RegisterOperation registers an operation definition
func RegisterOperation(op *OperationDefinition) {
	if op.MCPName == "" {
		op.MCPName = constants.MCPToolPrefix + op.ID
	}
	operationRegistry[op.ID] = op
}

// GetOperation retrieves an operation by ID
func GetOperation(id string) (*OperationDefinition, bool) {
	op, exists := operationRegistry[id]
	return op, exists
}

// GetAllOperations returns all registered operations
func GetAllOperations() map[string]*OperationDefinition {
	return operationRegistry
}

// GetOperationsByIDs returns the subset of registered operations named by
// ids. Unknown ids are ignored rather than rejected.
func GetOperationsByIDs(ids []string) map[string]*OperationDefinition {
	ops := make(map[string]*OperationDefinition, len(ids))
	for _, id := range ids {
		if op, exists := operationRegistry[id]; exists {
			ops[id] = op
		}
	}
	return ops
}

// init registers all relay operations
func init() {
	// Route Emergency: the two-step decode then route pipeline
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpRouteEmergency,
		Name:        "Route Emergency",
		Description: "Decode a situation report and route it to the best PPS",
		HTTPMethod:  http.MethodPost,
		HTTPPath:    constants.PathJamaiCreate,
		CLIUse:      constants.CmdRoute + " [situation]",
		CLIShort:    constants.DescRoute,
		MCPName:     "saferoute_route_emergency",
		ArgsType:    reflect.TypeOf(RouteEmergencyArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*RouteEmergencyArgs)
			return svc.RouteEmergency(ctx, model.IntakeInput{UserInput: a.UserInput, Location: a.Location})
		},
		HTTPHandler: routeEmergencyHandler,
		CLIHandler:  routeEmergencyCLI,
	})

	// Create Table: generic table-creation relay
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpCreateTable,
		Name:        "Create Table",
		Description: "Relay a gen-table creation to JamAI and return its reply",
		HTTPMethod:  http.MethodPost,
		HTTPPath:    constants.PathTableRelay,
		ArgsType:    reflect.TypeOf(TableRelayArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*TableRelayArgs)
			return rawPayload(svc.CreateTable(ctx, a.TableName, a.Input, a.Output))
		},
		HTTPHandler: relaySpec{
			operation: constants.OpCreateTable,
			method:    http.MethodPost,
			call:      createTableCall,
		}.handler(),
		MCPName: "saferoute_create_table",
		SkipCLI: true, // served by the hand-written tables command group
	})

	// Create Row: add-row relay into the emergency routing table
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpCreateRow,
		Name:        "Create Row",
		Description: "Relay one row insert into the emergency routing table",
		HTTPMethod:  http.MethodPost,
		HTTPPath:    constants.PathRowCreate,
		ArgsType:    reflect.TypeOf(RowCreateArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*RowCreateArgs)
			return rawPayload(svc.CreateRow(ctx, a.Input))
		},
		HTTPHandler: relaySpec{
			operation: constants.OpCreateRow,
			method:    http.MethodPost,
			call:      createRowCall,
		}.handler(),
		MCPName: "saferoute_create_row",
		SkipCLI: true, // served by the hand-written tables command group
	})

	// List Rows: row listing relay with the fixed default query
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpListRows,
		Name:        "List Rows",
		Description: "Relay a row listing from the emergency routing table",
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.PathRowsList,
		ArgsType:    reflect.TypeOf(RowListArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*RowListArgs)
			return rawPayload(svc.ListRows(ctx, a.values()))
		},
		HTTPHandler: relaySpec{
			operation: constants.OpListRows,
			method:    http.MethodGet,
			call:      listRowsCall,
		}.handler(),
		MCPName: "saferoute_list_rows",
		SkipCLI: true, // served by the hand-written tables command group
	})

	// Analyze: submit an analysis row or poll one by row id
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpAnalyze,
		Name:        "Analyze",
		Description: "Submit a situation for gen-table analysis, or poll a submitted row",
		HTTPMethod:  http.MethodPost,
		HTTPPath:    constants.PathAnalyze,
		CLIUse:      constants.CmdAnalyze + " [situation]",
		CLIShort:    constants.DescAnalyze,
		MCPName:     "saferoute_analyze",
		ArgsType:    reflect.TypeOf(AnalyzeArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*AnalyzeArgs)
			if a.UserInput == "" && a.RowID == "" {
				return nil, errors.New(constants.ResponseMissingInput)
			}
			return svc.Analyze(ctx, a.UserInput, a.LocationDetails, a.RowID)
		},
		HTTPHandler: analyzeHandler,
	})

	// Route: row-backed routing with local fallback analysis
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpRoute,
		Name:        "Route With Fallback",
		Description: "Route through the gen table, falling back to local analysis when the upstream is unreachable",
		HTTPMethod:  http.MethodPost,
		HTTPPath:    constants.PathRoute,
		CLIUse:      "route-rows [situation]",
		CLIShort:    "Route through the gen table with local fallback",
		MCPName:     "saferoute_route",
		ArgsType:    reflect.TypeOf(RouteArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*RouteArgs)
			return svc.Route(ctx, a.UserInput, a.LocationDetails, a.CreatedAt), nil
		},
		HTTPHandler: routeHandler,
	})

	// List Records: recent relay audit records
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpListRecords,
		Name:        "List Records",
		Description: constants.DescRecords,
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.PathRecords,
		CLIUse:      constants.CmdRecords,
		CLIShort:    constants.DescRecords,
		MCPName:     "saferoute_list_records",
		ArgsType:    reflect.TypeOf(RecordListArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*RecordListArgs)
			limit := a.Limit
			if limit <= 0 {
				limit = constants.DefaultRecordLimit
			}
			return svc.ListRecords(ctx, limit)
		},
	})

	// List Shelters: the PPS directory behind routing and fallback
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpListShelters,
		Name:        "List Shelters",
		Description: "List the PPS shelter directory",
		CLIUse:      "shelters",
		CLIShort:    "List the PPS shelter directory",
		MCPName:     "saferoute_list_shelters",
		ArgsType:    reflect.TypeOf(ShelterListArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*ShelterListArgs)
			return svc.ListShelters(ctx, a.Query)
		},
		SkipHTTP: true,
	})

	// Run Diagnostics: the five-step upstream health sequence
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpDiagnostics,
		Name:        "Run Diagnostics",
		Description: constants.DescDiag,
		CLIUse:      constants.CmdDiag,
		CLIShort:    constants.DescDiag,
		MCPName:     "saferoute_run_diagnostics",
		ArgsType:    reflect.TypeOf(DiagnosticsArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			a := args.(*DiagnosticsArgs)
			input, location := a.Input, a.Location
			if input == "" {
				input = constants.DefaultProbeInput
			}
			if location == "" {
				location = constants.DefaultProbeLocation
			}
			return svc.RunDiagnostics(ctx, input, location), nil
		},
		SkipHTTP: true,
	})

	// Spec: the embedded API document
	RegisterOperation(&OperationDefinition{
		ID:          constants.OpSpec,
		Name:        "Show API Document",
		Description: constants.DescSpec,
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.PathSpec,
		CLIUse:      constants.CmdSpec,
		CLIShort:    constants.DescSpec,
		MCPName:     "saferoute_spec",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		Handler: func(ctx context.Context, svc RelayService, args any) (any, error) {
			return docs.SafeRouteSpec, nil
		},
		HTTPHandler: specHandler,
	})
}

// values converts list args into query overrides, dropping zero values so
// the fixed defaults survive.
func (a *RowListArgs) values() url.Values {
	overrides := url.Values{}
	if a.TableID != "" {
		overrides.Set("table_id", a.TableID)
	}
	if a.Limit > 0 {
		overrides.Set("limit", strconv.Itoa(a.Limit))
	}
	if a.OrderBy != "" {
		overrides.Set("order_by", a.OrderBy)
	}
	if a.Order != "" {
		overrides.Set("order", a.Order)
	}
	return overrides
}

// rawPayload decodes an upstream reply for CLI and MCP consumers, which
// want structured output rather than passthrough bytes.
func rawPayload(raw *upstream.RawResult, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	out := map[string]any{"status": raw.StatusCode}
	var body any
	if len(raw.Body) > 0 && json.Unmarshal(raw.Body, &body) == nil {
		out["body"] = body
	} else {
		out["body"] = string(raw.Body)
	}
	return out, nil
}

// routeEmergencyCLI prints the envelope even when the pipeline fails, so
// partial decode progress stays visible on the terminal.
func routeEmergencyCLI(cmd *cobra.Command, args []string, svc RelayService) error {
	parsed, err := parseCLIArgs(cmd, args, reflect.TypeOf(RouteEmergencyArgs{}))
	if err != nil {
		return err
	}
	a := parsed.(*RouteEmergencyArgs)
	if a.UserInput == "" {
		return errors.New("a situation report is required (positional argument or --input)")
	}
	env, routeErr := svc.RouteEmergency(cmd.Context(), model.IntakeInput{UserInput: a.UserInput, Location: a.Location})
	if env != nil {
		if out := utils.MarshalJSONIndent(env, constants.JSONIndent); out.Err == nil {
			utils.User("%s", string(out.Data))
		}
	}
	return routeErr
}
