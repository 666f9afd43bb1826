package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostRaw_PassthroughPreservesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(422)
		w.Write([]byte(`{"detail":"validation failed"}`))
	}))
	defer server.Close()

	c := newRelayClient(5 * time.Second)
	res, err := c.postRaw(context.Background(), server.URL, map[string]any{"x": 1}, nil)
	if err != nil {
		t.Fatalf("postRaw failed: %v", err)
	}
	if res.StatusCode != 422 {
		t.Errorf("expected upstream status 422 preserved, got %d", res.StatusCode)
	}
	if string(res.Body) != `{"detail":"validation failed"}` {
		t.Errorf("expected body preserved verbatim, got %s", string(res.Body))
	}
	if res.Succeeded() {
		t.Error("422 must not count as success")
	}
	if res.ContentType() != "application/json" {
		t.Errorf("expected upstream content type, got %s", res.ContentType())
	}
}

func TestPostJSON_DecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"analysis":"ok","best_match":"PPS South (Kolej)"}`))
	}))
	defer server.Close()

	c := newRelayClient(5 * time.Second)
	var out struct {
		Analysis  string `json:"analysis"`
		BestMatch string `json:"best_match"`
	}
	if err := c.postJSON(context.Background(), server.URL, map[string]any{}, nil, &out); err != nil {
		t.Fatalf("postJSON failed: %v", err)
	}
	if out.BestMatch != "PPS South (Kolej)" {
		t.Errorf("expected decoded best_match, got %s", out.BestMatch)
	}
}

func TestPostJSON_Non2xxIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	c := newRelayClient(5 * time.Second)
	err := c.postJSON(context.Background(), server.URL, map[string]any{}, nil, nil)
	if !errors.Is(err, ErrUpstreamMalformed) {
		t.Errorf("expected ErrUpstreamMalformed, got %v", err)
	}
}

func TestPostJSON_InvalidJSONIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := newRelayClient(5 * time.Second)
	var out map[string]any
	err := c.postJSON(context.Background(), server.URL, map[string]any{}, nil, &out)
	if !errors.Is(err, ErrUpstreamMalformed) {
		t.Errorf("expected ErrUpstreamMalformed, got %v", err)
	}
}

func TestPostJSON_TransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening

	c := newRelayClient(2 * time.Second)
	err := c.postJSON(context.Background(), server.URL, map[string]any{}, nil, nil)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestGetRaw_Passthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("rows"))
	}))
	defer server.Close()

	c := newRelayClient(5 * time.Second)
	res, err := c.getRaw(context.Background(), server.URL, map[string]string{"Authorization": "Bearer pat"})
	if err != nil {
		t.Fatalf("getRaw failed: %v", err)
	}
	if string(res.Body) != "rows" || res.StatusCode != 200 {
		t.Errorf("unexpected result: %d %s", res.StatusCode, string(res.Body))
	}
	if res.ContentType() != "text/plain" {
		t.Errorf("expected upstream content type preserved, got %s", res.ContentType())
	}
}

func TestRawResult_ContentTypeDefaultsToJSON(t *testing.T) {
	res := &RawResult{StatusCode: 200, Header: http.Header{}, Body: []byte("{}")}
	if res.ContentType() != "application/json" {
		t.Errorf("expected JSON default, got %s", res.ContentType())
	}
}
