package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
)

func TestDirectoryFactory_CreateStandardManager(t *testing.T) {
	factory := NewFactory()
	ctx := context.Background()

	// nil config still yields a working directory backed by the defaults
	mgr := factory.CreateStandardManager(ctx, nil)
	if mgr == nil {
		t.Fatal("expected manager, got nil")
	}

	stats := mgr.SourceStats(ctx)
	if _, hasDefault := stats["*directory.DefaultDirectory"]; !hasDefault {
		t.Error("expected default source in manager")
	}

	shelters, err := mgr.ListShelters(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}
	if len(shelters) != 3 {
		t.Errorf("expected the 3 bundled shelters, got %d", len(shelters))
	}
}

func TestDirectoryFactory_RemoteFeedMerged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Shelter{
			{Name: "PPS Daerah (Stadium)", DistanceKM: 6.0},
		})
	}))
	defer server.Close()

	cfg := &config.Config{
		Shelters: []config.ShelterSourceConfig{
			{Type: constants.ShelterSourceRemote, URL: server.URL},
		},
	}

	factory := NewFactory()
	mgr := factory.CreateStandardManager(context.Background(), cfg)

	shelters, err := mgr.ListShelters(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}
	// 3 bundled + 1 remote
	if len(shelters) != 4 {
		t.Errorf("expected 4 shelters, got %d", len(shelters))
	}

	entry, err := mgr.GetShelter(context.Background(), "PPS Daerah (Stadium)")
	if err != nil || entry == nil {
		t.Errorf("expected remote entry via manager, got %+v, err: %v", entry, err)
	}
}

func TestDirectoryFactory_GetLocalShelterPath(t *testing.T) {
	factory := NewFactory()

	if path := factory.getLocalShelterPath(nil); path != config.DefaultShelterPath {
		t.Errorf("expected default path for nil config, got %s", path)
	}

	cfg := &config.Config{
		Shelters: []config.ShelterSourceConfig{
			{Type: constants.ShelterSourceLocal, Path: "/custom/path/shelters.yaml"},
		},
	}
	if path := factory.getLocalShelterPath(cfg); path != "/custom/path/shelters.yaml" {
		t.Errorf("expected custom path, got %s", path)
	}

	traversal := &config.Config{
		Shelters: []config.ShelterSourceConfig{
			{Type: constants.ShelterSourceLocal, Path: "../../etc/shelters.yaml"},
		},
	}
	if path := factory.getLocalShelterPath(traversal); path != config.DefaultShelterPath {
		t.Errorf("expected default path for traversal attempt, got %s", path)
	}
}
