package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/model"
	"gopkg.in/yaml.v3"
)

func writeTestDirectory(path string, shelters []model.Shelter) error {
	data, err := yaml.Marshal(shelters)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func TestNewLocalDirectory_DefaultPath(t *testing.T) {
	dir := NewLocalDirectory("")
	if dir.Path != config.DefaultShelterPath {
		t.Errorf("expected default path %s, got %s", config.DefaultShelterPath, dir.Path)
	}
}

func TestLocalDirectory_ListAndGetShelters(t *testing.T) {
	path := filepath.Join(t.TempDir(), t.Name()+"-shelters.yaml")
	shelters := []model.Shelter{
		{ID: "pps-a", Name: "PPS Alpha", DistanceKM: 1.5, Features: "Ground floor"},
		{ID: "pps-b", Name: "PPS Beta", DistanceKM: 3.0, Constraints: "No pets"},
	}
	if err := writeTestDirectory(path, shelters); err != nil {
		t.Fatalf("failed to write test directory: %v", err)
	}
	dir := NewLocalDirectory(path)
	listed, err := dir.ListShelters(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 shelters, got %d", len(listed))
	}
	for _, s := range listed {
		if s.Source != "local" {
			t.Errorf("expected source 'local', got %s", s.Source)
		}
	}
	entry, err := dir.GetShelter(context.Background(), "PPS Alpha")
	if err != nil || entry == nil || entry.Name != "PPS Alpha" {
		t.Errorf("GetShelter failed: %v, entry: %+v", err, entry)
	}
	entry, err = dir.GetShelter(context.Background(), "notfound")
	if err != nil || entry != nil {
		t.Errorf("expected nil for notfound, got: %+v, err: %v", entry, err)
	}
}

// A missing local file is an empty directory, not an error: the local
// override stays optional.
func TestLocalDirectory_ListShelters_MissingFile(t *testing.T) {
	dir := NewLocalDirectory(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
	listed, err := dir.ListShelters(context.Background(), ListOptions{})
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected empty list, got %d entries", len(listed))
	}
}

func TestLocalDirectory_ListShelters_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), t.Name()+"-bad.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("os.WriteFile failed: %v", err)
	}
	dir := NewLocalDirectory(path)
	if _, err := dir.ListShelters(context.Background(), ListOptions{}); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

type mockSource struct {
	shelters []model.Shelter
}

func (m *mockSource) ListShelters(ctx context.Context, opts ListOptions) ([]model.Shelter, error) {
	return m.shelters, nil
}

func (m *mockSource) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	for _, s := range m.shelters {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, nil
}

func TestDirectoryManager_PrecedenceAndGet(t *testing.T) {
	src1 := &mockSource{shelters: []model.Shelter{
		{Name: "PPS North (Sekolah)", Source: "local", Features: "Lift installed"},
	}}
	src2 := &mockSource{shelters: []model.Shelter{
		{Name: "PPS North (Sekolah)", Source: "default", Features: "No lift"},
		{Name: "PPS South (Kolej)", Source: "default"},
	}}
	mgr := NewDirectoryManager(src1, src2)

	listed, err := mgr.ListShelters(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 shelters after shadowing, got %d", len(listed))
	}
	for _, s := range listed {
		if s.Name == "PPS North (Sekolah)" && s.Source != "local" {
			t.Errorf("expected local entry to shadow default, got source %s", s.Source)
		}
	}

	entry, err := mgr.GetShelter(context.Background(), "PPS North (Sekolah)")
	if err != nil {
		t.Fatalf("GetShelter failed: %v", err)
	}
	if entry == nil || entry.Source != "local" {
		t.Errorf("expected local entry from manager, got %+v", entry)
	}
	entry, err = mgr.GetShelter(context.Background(), "notfound")
	if err != nil || entry != nil {
		t.Errorf("expected nil for notfound, got: %+v, err: %v", entry, err)
	}
}

func TestDirectoryManager_QueryFilter(t *testing.T) {
	src := &mockSource{shelters: []model.Shelter{
		{Name: "PPS North (Sekolah)", Constraints: "Cannot accommodate bedridden patients (stairs)."},
		{Name: "PPS South (Kolej)", Features: "OKU toilets, Designated outdoor pet area"},
	}}
	mgr := NewDirectoryManager(src)

	listed, err := mgr.ListShelters(context.Background(), ListOptions{Query: "oku"})
	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "PPS South (Kolej)" {
		t.Errorf("expected only the OKU shelter, got %+v", listed)
	}

	listed, err = mgr.ListShelters(context.Background(), ListOptions{Query: "helipad"})
	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected no matches, got %+v", listed)
	}
}

func TestDirectoryManager_SourceStats(t *testing.T) {
	src := &mockSource{shelters: []model.Shelter{{Name: "PPS Alpha"}}}
	mgr := NewDirectoryManager(src, NewDefaultDirectory())

	stats := mgr.SourceStats(context.Background())
	if stats["*directory.mockSource"] != 1 {
		t.Errorf("expected 1 entry for mock source, got %d", stats["*directory.mockSource"])
	}
	if stats["*directory.DefaultDirectory"] != 3 {
		t.Errorf("expected 3 bundled entries, got %d", stats["*directory.DefaultDirectory"])
	}
}
