package upstream

import (
	"context"
	"strings"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
)

// JawatClient talks to the Jawat decode and route endpoints.
type JawatClient struct {
	relayClient
	baseURL string
	pat     string
}

func NewJawatClient(cfg *config.UpstreamConfig) *JawatClient {
	return &JawatClient{
		relayClient: newRelayClient(cfg.HTTPTimeout()),
		baseURL:     strings.TrimRight(cfg.JawatAPIURL, "/"),
		pat:         cfg.JawatPAT,
	}
}

// Headers returns the outbound header set for Jawat calls.
func (c *JawatClient) Headers() map[string]string {
	h := map[string]string{constants.HeaderContentType: constants.ContentTypeJSON}
	if c.pat != "" {
		h[constants.HeaderAuthorization] = constants.BearerPrefix + c.pat
	}
	return h
}

// Decode extracts vulnerability tags from free text. A reply without a tags
// field is an empty tag list, not an error: routing proceeds untagged.
func (c *JawatClient) Decode(ctx context.Context, text string) (*model.DecodeResponse, error) {
	var out model.DecodeResponse
	if err := c.postJSON(ctx, c.baseURL+constants.JawatDecodePath, model.DecodeRequest{Text: text}, c.Headers(), &out); err != nil {
		return nil, err
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return &out, nil
}

// Route asks Jawat for the best-suited relief center given decoded tags,
// a location line, and the SOP/PPS context payloads.
func (c *JawatClient) Route(ctx context.Context, req model.RouteRequest) (*model.RouteResponse, error) {
	var out model.RouteResponse
	if err := c.postJSON(ctx, c.baseURL+constants.JawatRoutePath, req, c.Headers(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
