package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
)

// AnalyzeSubmit adds a find_safe_shelter row to the action table and returns
// its row id for polling. The table's generated columns fill in
// asynchronously upstream; AnalyzePoll checks on them.
func AnalyzeSubmit(ctx context.Context, deps *Dependencies, userInput, locationDetails string) (*model.AnalyzeResult, error) {
	res, err := deps.Jamai.AddCompletionRows(ctx, model.RowAddRequest{
		TableID: constants.TableEmergencyRouting,
		Data: []map[string]any{{
			constants.ColAction:          constants.ActionFindSafeShelter,
			constants.ColUserInput:       userInput,
			constants.ColLocationDetails: locationDetails,
			constants.ColCreatedAt:       time.Now().UTC().Format(time.RFC3339),
		}},
	})
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, fmt.Errorf("%w: analyze submit returned status %d", upstream.ErrUpstreamMalformed, res.StatusCode)
	}

	var reply model.RowAddResponse
	if err := json.Unmarshal(res.Body, &reply); err != nil || len(reply.Rows) == 0 {
		return nil, fmt.Errorf("%w: analyze submit reply carried no rows", upstream.ErrUpstreamMalformed)
	}

	rowID := reply.Rows[0].RowID
	utils.DebugCtx(ctx, "Analyze job submitted", "row_id", rowID)
	return &model.AnalyzeResult{Success: true, Status: constants.StatusSubmitted, RowID: rowID}, nil
}

// AnalyzePoll fetches the analysis columns for a submitted row. Incomplete
// rows and fetch errors both report pending; the edge answers 200 either way
// and the frontend keeps polling.
func AnalyzePoll(ctx context.Context, deps *Dependencies, rowID string) *model.AnalyzeResult {
	res, err := deps.Jamai.GetRow(ctx, constants.TableEmergencyRouting, rowID,
		[]string{constants.ColRouteAnalysis, constants.ColSelectedPPS, constants.ColDecodedTags})
	if err != nil {
		utils.WarnCtx(ctx, "Analyze poll failed", "row_id", rowID, "error", err)
		return &model.AnalyzeResult{
			Success:      false,
			Status:       constants.StatusPending,
			RowID:        rowID,
			ErrorDetails: err.Error(),
		}
	}
	if !res.Succeeded() {
		utils.DebugCtx(ctx, "Analyze poll rejected upstream", "row_id", rowID, "status", res.StatusCode)
		return &model.AnalyzeResult{
			Success:      false,
			Status:       constants.StatusPending,
			RowID:        rowID,
			ErrorDetails: fmt.Sprintf("upstream returned status %d", res.StatusCode),
		}
	}

	analysis := cellValue(res.Body, constants.ColRouteAnalysis)
	selected := cellValue(res.Body, constants.ColSelectedPPS)
	tags := cellValue(res.Body, constants.ColDecodedTags)

	if analysis != "" && selected != "" {
		return &model.AnalyzeResult{
			Success:     true,
			Status:      constants.StatusComplete,
			Analysis:    analysis,
			Tags:        tags,
			SelectedPPS: selected,
		}
	}
	return &model.AnalyzeResult{Success: false, Status: constants.StatusPending, RowID: rowID}
}

// cellValue pulls one column's value out of a fetched row. Cells arrive
// either as {"value": ...} objects or as plain strings depending on the
// upstream version.
func cellValue(body []byte, column string) string {
	var row map[string]any
	if err := json.Unmarshal(body, &row); err != nil {
		return ""
	}
	switch v := row[column].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return ""
}
