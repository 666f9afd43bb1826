package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/utils"
)

// RawResult carries an upstream reply verbatim so passthrough routes can
// mirror status, content type, and body byte-for-byte.
type RawResult struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Succeeded reports whether the upstream answered 2xx.
func (r *RawResult) Succeeded() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the upstream Content-Type, defaulting to JSON when
// the upstream omitted one.
func (r *RawResult) ContentType() string {
	if ct := r.Header.Get(constants.HeaderContentType); ct != "" {
		return ct
	}
	return constants.ContentTypeJSON
}

// relayClient is the HTTP plumbing shared by both upstream clients. The
// timeout bounds every outbound call to avoid hanging.
type relayClient struct {
	httpClient *http.Client
}

func newRelayClient(timeout time.Duration) relayClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return relayClient{httpClient: &http.Client{Timeout: timeout}}
}

// postJSON marshals body as JSON, sends it, and decodes the JSON response
// into result. Non-2xx and undecodable replies map to ErrUpstreamMalformed.
func (c relayClient) postJSON(ctx context.Context, url string, body any, headers map[string]string, result any) error {
	res, err := c.postRaw(ctx, url, body, headers)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		utils.Debug("POST %s returned status %d: %s", url, res.StatusCode, string(res.Body))
		return fmt.Errorf("%w: status %d from %s", ErrUpstreamMalformed, res.StatusCode, url)
	}
	if result != nil {
		if err := json.Unmarshal(res.Body, result); err != nil {
			return fmt.Errorf("%w: failed to decode JSON from %s: %v", ErrUpstreamMalformed, url, err)
		}
	}
	return nil
}

// postRaw sends body as JSON and returns the reply verbatim. Only transport
// failures are errors; any status code is a valid passthrough result.
func (c relayClient) postRaw(ctx context.Context, url string, body any, headers map[string]string) (*RawResult, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if _, ok := headers[constants.HeaderContentType]; !ok {
		req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	return c.do(req)
}

// getRaw performs a GET and returns the reply verbatim.
func (c relayClient) getRaw(ctx context.Context, url string, headers map[string]string) (*RawResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

func (c relayClient) do(req *http.Request) (*RawResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response from %s: %v", ErrUpstreamUnavailable, req.URL, err)
	}
	return &RawResult{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
