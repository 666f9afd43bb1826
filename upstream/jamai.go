package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/utils"
)

// JamaiClient talks to the JamAI gen-table API.
type JamaiClient struct {
	relayClient
	baseURL     string
	tableAPIURL string
	projectID   string
	pat         string
}

func NewJamaiClient(cfg *config.UpstreamConfig) *JamaiClient {
	return &JamaiClient{
		relayClient: newRelayClient(cfg.HTTPTimeout()),
		baseURL:     strings.TrimRight(cfg.JamaiAPIURL, "/"),
		tableAPIURL: cfg.JamaiTableAPIURL,
		projectID:   cfg.JamaiProjectID,
		pat:         cfg.JamaiPAT,
	}
}

// Headers returns the outbound header set for JamAI calls. Both project-id
// spellings are sent; deployments disagree on which one they read.
func (c *JamaiClient) Headers() map[string]string {
	h := map[string]string{constants.HeaderContentType: constants.ContentTypeJSON}
	if c.pat != "" {
		h[constants.HeaderAuthorization] = constants.BearerPrefix + c.pat
	}
	if c.projectID != "" {
		h[constants.HeaderProjectIDUpper] = c.projectID
		h[constants.HeaderProjectID] = c.projectID
	}
	return h
}

// CreateTable posts a gen-table creation payload and returns the reply
// verbatim for passthrough.
func (c *JamaiClient) CreateTable(ctx context.Context, payload model.TableCreateRequest) (*RawResult, error) {
	return c.postRaw(ctx, c.baseURL+constants.JamaiTableCreatePath, payload, c.Headers())
}

// AddRows posts rows to the configured rows endpoint and returns the reply
// verbatim for passthrough.
func (c *JamaiClient) AddRows(ctx context.Context, payload model.RowAddRequest) (*RawResult, error) {
	return c.postRaw(ctx, c.baseURL+constants.JamaiRowsPath, payload, c.Headers())
}

// ListRows fetches rows with the given query and returns the reply verbatim
// for passthrough.
func (c *JamaiClient) ListRows(ctx context.Context, query url.Values) (*RawResult, error) {
	u := c.baseURL + constants.JamaiRowsPath
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getRaw(ctx, u, c.Headers())
}

// AddCompletionRows posts rows through the gen-table Add Rows API, the
// endpoint that runs completion columns. The explicit table URL wins when
// configured.
func (c *JamaiClient) AddCompletionRows(ctx context.Context, payload model.RowAddRequest) (*RawResult, error) {
	endpoint := c.tableAPIURL
	if endpoint == "" {
		endpoint = c.baseURL + constants.JamaiAddRowsPath
	}
	return c.postRaw(ctx, endpoint, payload, c.Headers())
}

// GetRow fetches a single row, restricted to the named columns when any are
// given.
func (c *JamaiClient) GetRow(ctx context.Context, tableID, rowID string, columns []string) (*RawResult, error) {
	u := c.baseURL + fmt.Sprintf(constants.JamaiRowPathFormat, url.PathEscape(tableID), url.PathEscape(rowID))
	if len(columns) > 0 {
		q := url.Values{}
		for _, col := range columns {
			q.Add("columns", col)
		}
		u += "?" + q.Encode()
	}
	return c.getRaw(ctx, u, c.Headers())
}

// DefaultListQuery is the dashboard query: the single newest
// emergency_routing row.
func DefaultListQuery() url.Values {
	return url.Values{
		"table_id": {constants.TableEmergencyRouting},
		"limit":    {"1"},
		"order_by": {constants.ColCreatedAt},
		"order":    {"desc"},
	}
}

// rowAddCandidates builds the candidate endpoint walk: the explicit table
// URL first when configured, then the add-rows endpoint, the project-scoped
// variants, and the legacy rows path.
func (c *JamaiClient) rowAddCandidates(tableID string) []string {
	var candidates []string
	if c.tableAPIURL != "" {
		candidates = append(candidates, c.tableAPIURL)
	}
	if c.baseURL != "" {
		candidates = append(candidates, c.baseURL+constants.JamaiAddRowsPath)
		if c.projectID != "" {
			candidates = append(candidates,
				fmt.Sprintf("%s/v1/projects/%s/tables/%s/rows", c.baseURL, c.projectID, tableID),
				fmt.Sprintf("%s/v1/projects/%s/tables/%s", c.baseURL, c.projectID, tableID),
			)
		}
		candidates = append(candidates, fmt.Sprintf("%s/v1/tables/%s/rows", c.baseURL, tableID))
	}
	return candidates
}

// usesAddRowsShape reports whether a candidate endpoint takes the gen-table
// add-rows payload rather than the legacy {rows: [...]} shape.
func usesAddRowsShape(endpoint string) bool {
	return strings.Contains(endpoint, "/api/v2/gen_tables/") || strings.HasSuffix(endpoint, "/rows/add")
}

// AddRowsAnywhere posts rows to the first candidate endpoint that accepts
// them. Diagnostics and uploads use this walk; the relay routes call their
// configured endpoint exactly once.
func (c *JamaiClient) AddRowsAnywhere(ctx context.Context, tableID string, rows []map[string]any) (*RawResult, error) {
	candidates := c.rowAddCandidates(tableID)
	if len(candidates) == 0 {
		return nil, utils.Errorf("no candidate row endpoints: set %s or %s", constants.EnvJamaiTableAPIURL, constants.EnvJamaiAPIURL)
	}
	var lastErr error
	for _, endpoint := range candidates {
		var payload any
		if usesAddRowsShape(endpoint) {
			payload = model.RowAddRequest{TableID: tableID, Data: rows}
		} else {
			payload = map[string]any{"rows": rows}
		}
		res, err := c.postRaw(ctx, endpoint, payload, c.Headers())
		if err != nil {
			utils.Warn("Row add to %s failed: %v", endpoint, err)
			lastErr = err
			continue
		}
		if res.Succeeded() {
			utils.Debug("Row add accepted by %s", endpoint)
			return res, nil
		}
		utils.Debug("Row add endpoint %s returned status %d", endpoint, res.StatusCode)
		lastErr = fmt.Errorf("%w: status %d from %s", ErrUpstreamMalformed, res.StatusCode, endpoint)
	}
	return nil, lastErr
}
