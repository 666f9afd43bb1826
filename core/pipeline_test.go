package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/directory"
	"github.com/jawat-my/saferoute/event"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/storage"
	"github.com/jawat-my/saferoute/upstream"
)

// newTestDeps builds a Dependencies with in-memory side channels and clients
// pointed at the given stub servers.
func newTestDeps(jawatURL, jamaiURL string) *Dependencies {
	cfg := &config.Config{}
	cfg.Upstream.JawatAPIURL = jawatURL
	cfg.Upstream.JawatPAT = "jawat-pat-test"
	cfg.Upstream.JamaiAPIURL = jamaiURL
	cfg.Upstream.JamaiProjectID = "proj-test"
	cfg.Upstream.JamaiPAT = "jamai-pat-test"
	return &Dependencies{
		Config:   cfg,
		Store:    storage.NewMemoryStorage(),
		Bus:      event.NewInProcEventBus(),
		Shelters: directory.NewDefaultDirectory(),
		Jawat:    upstream.NewJawatClient(&cfg.Upstream),
		Jamai:    upstream.NewJamaiClient(&cfg.Upstream),
	}
}

// newJawatStub serves the decode and route endpoints from the given handlers.
func newJawatStub(decode, route http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	if decode != nil {
		mux.HandleFunc(constants.JawatDecodePath, decode)
	}
	if route != nil {
		mux.HandleFunc(constants.JawatRoutePath, route)
	}
	return httptest.NewServer(mux)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// waitForEvent subscribes to a topic and returns a channel that yields the
// first payload delivered on it.
func waitForEvent(t *testing.T, bus event.EventBus, topic string) <-chan map[string]any {
	t.Helper()
	got := make(chan map[string]any, 1)
	bus.Subscribe(context.Background(), topic, func(payload any) {
		if m, ok := payload.(map[string]any); ok {
			select {
			case got <- m:
			default:
			}
		}
	})
	return got
}

func receiveEvent(t *testing.T, ch <-chan map[string]any) map[string]any {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRouteEmergency_Success(t *testing.T) {
	var routeReq model.RouteRequest
	srv := newJawatStub(
		jsonHandler(http.StatusOK, `{"tags":["4 Pax","Warga Emas/Bedridden","Pet/Cat"]}`),
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&routeReq))
			jsonHandler(http.StatusOK, `{"analysis":"Rejected A for stairs.","best_match":"PPS South (Kolej)"}`)(w, r)
		},
	)
	defer srv.Close()

	deps := newTestDeps(srv.URL, "")
	completed := waitForEvent(t, deps.Bus, constants.TopicRoutingCompleted)

	env, err := RouteEmergency(context.Background(), deps, model.IntakeInput{
		UserInput: "4 people, one bedridden, one cat",
		Location:  "Segamat, Johor",
	})
	require.NoError(t, err)

	assert.Equal(t, constants.MsgRoutingEntryCreated, env.Message)
	assert.Equal(t, constants.JamaiStatusSuccess, env.JamaiStatus)
	require.NotNil(t, env.Output)
	assert.Equal(t, "4 Pax, Warga Emas/Bedridden, Pet/Cat", env.Output.DecodedTags)
	assert.Equal(t, "Rejected A for stairs.", env.Output.AnalysisText)
	assert.Equal(t, "PPS South (Kolej)", env.Output.SelectedPPS)

	// Route request embeds the decode result plus the knowledge contexts.
	assert.Equal(t, []string{"4 Pax", "Warga Emas/Bedridden", "Pet/Cat"}, routeReq.DecodedTags)
	assert.Equal(t, "Segamat, Johor", routeReq.LocationDetails)
	assert.Contains(t, routeReq.SOPContext, "Standard Operating Procedures for Malaysian Flood Mitigation")
	assert.Contains(t, routeReq.PPSContext, "PPS North (Sekolah)")

	// One succeeded record with the operation name.
	recs, err := deps.Store.ListRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, constants.OpRouteEmergency, recs[0].Operation)
	assert.Equal(t, model.RecordSucceeded, recs[0].Status)

	evt := receiveEvent(t, completed)
	assert.Equal(t, "PPS South (Kolej)", evt["selected_pps"])
	assert.NotEmpty(t, evt["record_id"])
}

func TestRouteEmergency_JoinsTagsWithCommaSpace(t *testing.T) {
	srv := newJawatStub(
		jsonHandler(http.StatusOK, `{"tags":["A","B"]}`),
		jsonHandler(http.StatusOK, `{"analysis":"ok","best_match":"PPS Central (Dewan)"}`),
	)
	defer srv.Close()

	env, err := RouteEmergency(context.Background(), newTestDeps(srv.URL, ""), model.IntakeInput{UserInput: "help"})
	require.NoError(t, err)
	assert.Equal(t, "A, B", env.Output.DecodedTags)
}

func TestRouteEmergency_NoTagsStillRoutes(t *testing.T) {
	var routeCalled bool
	var routeReq model.RouteRequest
	srv := newJawatStub(
		jsonHandler(http.StatusOK, `{}`),
		func(w http.ResponseWriter, r *http.Request) {
			routeCalled = true
			require.NoError(t, json.NewDecoder(r.Body).Decode(&routeReq))
			jsonHandler(http.StatusOK, `{"analysis":"untagged","best_match":"PPS North (Sekolah)"}`)(w, r)
		},
	)
	defer srv.Close()

	env, err := RouteEmergency(context.Background(), newTestDeps(srv.URL, ""), model.IntakeInput{UserInput: "help"})
	require.NoError(t, err)
	assert.True(t, routeCalled, "route step must run even with no tags")
	assert.NotNil(t, routeReq.DecodedTags)
	assert.Empty(t, routeReq.DecodedTags)
	assert.Equal(t, "", env.Output.DecodedTags)
	assert.Equal(t, "PPS North (Sekolah)", env.Output.SelectedPPS)
}

func TestRouteEmergency_DecodeFailure(t *testing.T) {
	srv := newJawatStub(
		jsonHandler(http.StatusInternalServerError, `{"detail":"boom"}`),
		nil,
	)
	defer srv.Close()

	deps := newTestDeps(srv.URL, "")
	failed := waitForEvent(t, deps.Bus, constants.TopicRoutingFailed)

	env, err := RouteEmergency(context.Background(), deps, model.IntakeInput{UserInput: "help"})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUpstreamMalformed)
	assert.Equal(t, constants.JamaiStatusError, env.JamaiStatus)
	assert.Equal(t, constants.ResponseUpstreamBadReply, env.Error)
	assert.Nil(t, env.Output)
	assert.NotContains(t, env.Error, "boom", "raw upstream detail must not leak")

	recs, err := deps.Store.ListRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.RecordFailed, recs[0].Status)

	evt := receiveEvent(t, failed)
	assert.Equal(t, "", evt["selected_pps"])
}

func TestRouteEmergency_UnreachableUpstream(t *testing.T) {
	srv := newJawatStub(nil, nil)
	srv.Close()

	env, err := RouteEmergency(context.Background(), newTestDeps(srv.URL, ""), model.IntakeInput{UserInput: "help"})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUpstreamUnavailable)
	assert.Equal(t, constants.ResponseUpstreamGone, env.Error)
}

func TestRouteEmergency_RouteFailureKeepsTags(t *testing.T) {
	srv := newJawatStub(
		jsonHandler(http.StatusOK, `{"tags":["5 Pax"]}`),
		jsonHandler(http.StatusBadGateway, `{"detail":"llm down"}`),
	)
	defer srv.Close()

	deps := newTestDeps(srv.URL, "")
	failed := waitForEvent(t, deps.Bus, constants.TopicRoutingFailed)

	env, err := RouteEmergency(context.Background(), deps, model.IntakeInput{UserInput: "help"})
	require.Error(t, err)
	assert.Equal(t, constants.JamaiStatusError, env.JamaiStatus)
	require.NotNil(t, env.Output, "partial progress must be reported")
	assert.Equal(t, "5 Pax", env.Output.DecodedTags)
	assert.Empty(t, env.Output.SelectedPPS)

	evt := receiveEvent(t, failed)
	tags, ok := evt["tags"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"5 Pax"}, tags)
}

func TestBestMatchFromAnalysis(t *testing.T) {
	tests := []struct {
		name          string
		analysis      string
		wantBest      string
		wantRemainder string
	}{
		{
			name:          "last line",
			analysis:      "A is rejected.\nB is fine.\nBEST MATCH: PPS South (Kolej)",
			wantBest:      "PPS South (Kolej)",
			wantRemainder: "A is rejected.\nB is fine.",
		},
		{
			name:          "lowercase prefix",
			analysis:      "reasoning\nbest match: PPS Central (Dewan)",
			wantBest:      "PPS Central (Dewan)",
			wantRemainder: "reasoning",
		},
		{
			name:          "takes last of several",
			analysis:      "BEST MATCH: wrong\nmore text\nBEST MATCH: right",
			wantBest:      "right",
			wantRemainder: "BEST MATCH: wrong\nmore text",
		},
		{
			name:          "absent",
			analysis:      "no selection was possible",
			wantBest:      "",
			wantRemainder: "no selection was possible",
		},
		{
			name:          "indented line",
			analysis:      "text\n  BEST MATCH: PPS North (Sekolah)  ",
			wantBest:      "PPS North (Sekolah)",
			wantRemainder: "text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, remainder := BestMatchFromAnalysis(tt.analysis)
			assert.Equal(t, tt.wantBest, best)
			assert.Equal(t, tt.wantRemainder, remainder)
		})
	}
}

func TestPPSContext(t *testing.T) {
	t.Run("nil directory uses static knowledge", func(t *testing.T) {
		deps := &Dependencies{}
		assert.Equal(t, constants.PPSKnowledgeText, PPSContext(context.Background(), deps))
	})

	t.Run("directory entries are rendered", func(t *testing.T) {
		deps := &Dependencies{Shelters: directory.NewDefaultDirectory()}
		got := PPSContext(context.Background(), deps)
		assert.True(t, strings.HasPrefix(got, "PPS_KNOWLEDGE (Active Centers):"))
		assert.Contains(t, got, "PPS North (Sekolah)")
		assert.Contains(t, got, "lat:1.5 lon:103.75")
		assert.Contains(t, got, "constraints: Cannot accommodate bedridden patients (stairs).")
	})
}
