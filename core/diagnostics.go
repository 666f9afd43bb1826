package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/prompt"
	"github.com/jawat-my/saferoute/utils"
)

// DiagnosticsStep is one step outcome in a diagnostics run.
type DiagnosticsStep struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// DiagnosticsReport summarizes a five-step upstream probe.
type DiagnosticsReport struct {
	Timestamp   time.Time         `json:"timestamp"`
	Steps       []DiagnosticsStep `json:"steps"`
	Tags        []string          `json:"tags,omitempty"`
	SelectedPPS string            `json:"selected_pps,omitempty"`
	Analysis    string            `json:"analysis,omitempty"`
	Healthy     bool              `json:"healthy"`
}

// RunDiagnostics exercises the full workflow against live upstreams: create
// the action table, seed the knowledge tables, probe the decode and route
// steps, and log the results back to the action table. A step failure is
// recorded and the sequence continues; only the report says how far it got.
func RunDiagnostics(ctx context.Context, deps *Dependencies, text, location string) *DiagnosticsReport {
	report := &DiagnosticsReport{Timestamp: time.Now().UTC(), Healthy: true}
	step := func(name string, ok bool, detail string) {
		report.Steps = append(report.Steps, DiagnosticsStep{Name: name, OK: ok, Detail: detail})
		if ok {
			utils.InfoCtx(ctx, "Diagnostics step passed", "step", name)
		} else {
			report.Healthy = false
			utils.WarnCtx(ctx, "Diagnostics step failed", "step", name, "detail", detail)
		}
	}

	// Step 1: ensure the action table exists. 409 means it already does.
	res, err := deps.Jamai.CreateTable(ctx, EmergencyRoutingSchema())
	switch {
	case err != nil:
		step("create_action_table", false, err.Error())
	case res.Succeeded() || res.StatusCode == 409:
		step("create_action_table", true, "")
	default:
		step("create_action_table", false, fmt.Sprintf("status %d", res.StatusCode))
	}

	// Step 2: create the knowledge table and seed the shelter rows.
	res, err = deps.Jamai.CreateTable(ctx, PPSKnowledgeSchema())
	tableOK := err == nil && (res.Succeeded() || res.StatusCode == 409)
	if tableOK {
		shelters := listSheltersByDistance(ctx, deps)
		if upErr := UploadPPSKnowledge(ctx, deps, shelters); upErr != nil {
			step("seed_pps_knowledge", false, upErr.Error())
		} else {
			step("seed_pps_knowledge", true, fmt.Sprintf("%d shelters", len(shelters)))
		}
	} else if err != nil {
		step("seed_pps_knowledge", false, err.Error())
	} else {
		step("seed_pps_knowledge", false, fmt.Sprintf("status %d", res.StatusCode))
	}

	// Step 3: upload the SOP row.
	if err := UploadSOP(ctx, deps); err != nil {
		step("upload_sop", false, err.Error())
	} else {
		step("upload_sop", true, "")
	}

	// Step 4: probe the decode and route steps. Jawat when configured,
	// otherwise a completion-columns row against the gen-table API.
	tags, analysis, best, probeErr := probeRouting(ctx, deps, text, location)
	report.Tags = tags
	report.Analysis = analysis
	report.SelectedPPS = best
	if probeErr != nil {
		step("probe_routing", false, probeErr.Error())
	} else {
		step("probe_routing", true, "selected "+best)
	}

	// Step 5: log the decode and route rows to the action table.
	now := time.Now().UTC()
	rows := []map[string]any{
		{
			"id":                     fmt.Sprintf("decode-%d-1", now.Unix()),
			constants.ColAction:      constants.ActionDecodeVulnerability,
			"input":                  text,
			"location":               location,
			constants.ColDecodedTags: tags,
			"pps_data":               listSheltersByDistance(ctx, deps),
			constants.ColCreatedAt:   now.Format(time.RFC3339),
		},
		{
			"id":                      fmt.Sprintf("route-%d-2", now.Unix()),
			constants.ColAction:       constants.ActionRouteOptimalPPS,
			"input_tags":              tags,
			"location":                location,
			constants.ColSelectedPPS:  best,
			constants.ColAnalysisText: analysis,
			"pps_data":                listSheltersByDistance(ctx, deps),
			constants.ColCreatedAt:    now.Format(time.RFC3339),
		},
	}
	if _, err := deps.Jamai.AddRowsAnywhere(ctx, constants.TableEmergencyRouting, rows); err != nil {
		step("log_results", false, err.Error())
	} else {
		step("log_results", true, "")
	}

	deps.publish(constants.TopicDiagnosticsCompleted, diagnosticsEvent(report))
	return report
}

// diagnosticsEvent builds the diagnostics.completed payload.
func diagnosticsEvent(report *DiagnosticsReport) map[string]any {
	failed := []string{}
	for _, s := range report.Steps {
		if !s.OK {
			failed = append(failed, s.Name)
		}
	}
	return map[string]any{
		"timestamp":    report.Timestamp.Format(time.RFC3339),
		"healthy":      report.Healthy,
		"selected_pps": report.SelectedPPS,
		"failed_steps": failed,
	}
}

// probeRouting runs one decode then route round trip. Decode failures keep
// the original workflow's quirk of probing the route step with a literal
// "Decoding Failed" tag instead of aborting.
func probeRouting(ctx context.Context, deps *Dependencies, text, location string) (tags []string, analysis, best string, err error) {
	if deps.Config != nil && deps.Config.Upstream.JawatAPIURL != "" {
		decoded, decodeErr := deps.Jawat.Decode(ctx, text)
		if decodeErr != nil {
			utils.WarnCtx(ctx, "Diagnostics decode failed", "error", decodeErr)
			tags = []string{"Decoding Failed"}
		} else {
			tags = decoded.Tags
		}
		routed, routeErr := deps.Jawat.Route(ctx, model.RouteRequest{
			DecodedTags:     tags,
			LocationDetails: location,
			SOPContext:      constants.SOPKnowledge,
			PPSContext:      PPSContext(ctx, deps),
		})
		if routeErr != nil {
			return tags, "", "", routeErr
		}
		analysis = routed.Analysis
		best = routed.BestMatch
		if best == "" {
			best, analysis = BestMatchFromAnalysis(analysis)
		}
		if best == "" {
			return tags, analysis, "", fmt.Errorf("route probe returned no best match")
		}
		return tags, analysis, best, nil
	}

	payload, err := RoutingRequestPayload(text, location)
	if err != nil {
		return nil, "", "", err
	}
	res, err := deps.Jamai.AddCompletionRows(ctx, payload)
	if err != nil {
		return nil, "", "", err
	}
	if !res.Succeeded() {
		return nil, "", "", fmt.Errorf("completion probe returned status %d", res.StatusCode)
	}
	var reply model.RowAddResponse
	if err := json.Unmarshal(res.Body, &reply); err != nil || len(reply.Rows) == 0 {
		return nil, "", "", fmt.Errorf("completion probe reply carried no rows")
	}
	cols := reply.Rows[0].Columns
	tagText := cols[constants.ColDecodedTags].Content()
	if tagText != "" {
		tags = splitTags(tagText)
	}
	best, analysis = BestMatchFromAnalysis(cols[constants.ColRouteAnalysis].Content())
	if best == "" {
		return tags, analysis, "", fmt.Errorf("completion probe returned no best match")
	}
	return tags, analysis, best, nil
}

// RoutingRequestPayload builds the completion-columns add-row payload that
// asks the gen-table API to decode and route in one call. The decoded_tags
// result feeds the route_analysis prompt through a prompt dependency.
func RoutingRequestPayload(userInput, location string) (model.RowAddRequest, error) {
	query, err := prompt.RoutingQuery("<PLACEHOLDER_FOR_DECODED_TAGS>", location,
		constants.SOPKnowledge, constants.PPSKnowledgeText)
	if err != nil {
		return model.RowAddRequest{}, err
	}
	dependency, err := prompt.DecodedTagsDependency(constants.SOPKnowledge, constants.PPSKnowledgeText)
	if err != nil {
		return model.RowAddRequest{}, err
	}
	return model.RowAddRequest{
		TableID: constants.TableEmergencyRouting,
		Data: []map[string]any{{
			constants.ColAction:          constants.ActionRoutingRequest,
			constants.ColUserInput:       userInput,
			constants.ColLocationDetails: location,
			constants.ColCreatedAt:       time.Now().UTC().Format(time.RFC3339),
		}},
		CompletionColumns: map[string]model.CompletionColumn{
			constants.ColDecodedTags: {
				Model:             constants.DefaultCompletionModel,
				Prompt:            userInput,
				SystemInstruction: prompt.DecodeSystemInstruction,
			},
			constants.ColRouteAnalysis: {
				Model:             constants.DefaultCompletionModel,
				Prompt:            query,
				SystemInstruction: prompt.RouteSystemInstruction,
				PromptDependencies: map[string]string{
					constants.ColDecodedTags: dependency,
				},
			},
		},
	}, nil
}

// UploadSOP adds the SOP summary row to the action table for RAG grounding.
// The exchange is recorded and archived like any relay call.
func UploadSOP(ctx context.Context, deps *Dependencies) error {
	now := time.Now().UTC()
	rows := []map[string]any{{
		"id":                   fmt.Sprintf("sop-%d", now.Unix()),
		constants.ColAction:    constants.ActionSOPUpload,
		"title":                constants.SOPTitle,
		"text":                 constants.SOPKnowledge,
		"source":               constants.SourceName,
		constants.ColCreatedAt: now.Format(time.RFC3339),
	}}
	res, err := deps.Jamai.AddRowsAnywhere(ctx, constants.TableEmergencyRouting, rows)
	var response any
	if res != nil {
		response = map[string]any{"status": res.StatusCode, "body": string(res.Body)}
	}
	RecordExchange(ctx, deps, constants.ActionSOPUpload, rows, response, err)
	return err
}

// UploadPPSKnowledge adds one row per shelter to the knowledge table,
// synthesizing the RAG description for entries that carry none.
func UploadPPSKnowledge(ctx context.Context, deps *Dependencies, shelters []model.Shelter) error {
	if len(shelters) == 0 {
		return fmt.Errorf("no shelters to upload")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rows := make([]map[string]any, 0, len(shelters))
	for _, s := range shelters {
		rows = append(rows, map[string]any{
			"id":                   s.ID,
			"pps_name":             s.Name,
			"distance_km":          s.DistanceKM,
			"latitude":             s.Latitude,
			"longitude":            s.Longitude,
			"features":             s.Features,
			"constraints":          s.Constraints,
			"description":          s.KnowledgeText(),
			constants.ColCreatedAt: now,
		})
	}
	res, err := deps.Jamai.AddRowsAnywhere(ctx, constants.TablePPSKnowledge, rows)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		return fmt.Errorf("pps upload returned status %d", res.StatusCode)
	}
	return nil
}

// EmergencyRoutingSchema is the action table layout the workflow logs into.
func EmergencyRoutingSchema() model.TableCreateRequest {
	return model.TableCreateRequest{
		ID:            constants.TableEmergencyRouting,
		Title:         "Emergency Routing Workflow Log",
		IsActionTable: true,
		Cols: []model.TableColumn{
			{ID: "id", DType: "str", ColumnType: "input"},
			{ID: constants.ColAction, DType: "str", ColumnType: "input"},
			{ID: constants.ColCreatedAt, DType: "date-time", ColumnType: "input"},
			{ID: "input", DType: "str", ColumnType: "input"},
			{ID: "location", DType: "str", ColumnType: "input"},
			{ID: "input_tags", DType: "list", ColumnType: "input"},
			{ID: constants.ColDecodedTags, DType: "list", ColumnType: "LLM Output"},
			{ID: constants.ColSelectedPPS, DType: "str", ColumnType: "LLM Output"},
			{ID: constants.ColAnalysisText, DType: "str", ColumnType: "LLM Output"},
			{ID: "pps_data", DType: "json", ColumnType: "Python Output"},
			{ID: "text", DType: "str", ColumnType: "Python Output"},
		},
	}
}

// PPSKnowledgeSchema is the knowledge table layout behind RAG retrieval.
func PPSKnowledgeSchema() model.TableCreateRequest {
	return model.TableCreateRequest{
		ID:    constants.TablePPSKnowledge,
		Title: "PPS Knowledge",
		Cols: []model.TableColumn{
			{ID: "id", DType: "str", ColumnType: "input"},
			{ID: "pps_name", DType: "str", ColumnType: "input"},
			{ID: "distance_km", DType: "float", ColumnType: "input"},
			{ID: "latitude", DType: "float", ColumnType: "input"},
			{ID: "longitude", DType: "float", ColumnType: "input"},
			{ID: "features", DType: "str", ColumnType: "input"},
			{ID: "constraints", DType: "str", ColumnType: "input"},
			{ID: "description", DType: "str", ColumnType: "input"},
			{ID: constants.ColCreatedAt, DType: "date-time", ColumnType: "input"},
		},
	}
}

// splitTags turns a comma-separated tag string into a trimmed list.
func splitTags(s string) []string {
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
