package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jawat-my/saferoute/model"
)

func TestNewRemoteDirectory_DefaultName(t *testing.T) {
	dir := NewRemoteDirectory("https://example.com", "")
	if dir.Source != "remote" {
		t.Errorf("expected default source name 'remote', got %s", dir.Source)
	}
}

func TestRemoteDirectory_ListShelters_Success(t *testing.T) {
	testShelters := []model.Shelter{
		{
			ID:         "pps-10",
			Name:       "PPS Sungai (Dewan)",
			DistanceKM: 2.5,
			Features:   "Ground floor access",
		},
		{
			ID:          "pps-11",
			Name:        "PPS Bukit (Sekolah)",
			DistanceKM:  5.0,
			Constraints: "No overnight stays.",
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept header 'application/json', got %s", r.Header.Get("Accept"))
		}
		if r.Header.Get("User-Agent") != "SafeRoute/1.0" {
			t.Errorf("expected User-Agent 'SafeRoute/1.0', got %s", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testShelters)
	}))
	defer server.Close()

	dir := NewRemoteDirectory(server.URL, "district-feed")
	shelters, err := dir.ListShelters(context.Background(), ListOptions{})

	if err != nil {
		t.Fatalf("ListShelters failed: %v", err)
	}

	if len(shelters) != 2 {
		t.Errorf("expected 2 shelters, got %d", len(shelters))
	}

	for _, s := range shelters {
		if s.Source != "district-feed" {
			t.Errorf("expected source 'district-feed', got %s", s.Source)
		}
	}

	if shelters[0].Name != "PPS Sungai (Dewan)" {
		t.Errorf("expected first shelter 'PPS Sungai (Dewan)', got %s", shelters[0].Name)
	}
	if shelters[1].Name != "PPS Bukit (Sekolah)" {
		t.Errorf("expected second shelter 'PPS Bukit (Sekolah)', got %s", shelters[1].Name)
	}
}

func TestRemoteDirectory_ListShelters_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Server error"))
	}))
	defer server.Close()

	dir := NewRemoteDirectory(server.URL, "district-feed")
	_, err := dir.ListShelters(context.Background(), ListOptions{})

	if err == nil {
		t.Error("expected error for HTTP 500, got nil")
	}
	if err != nil && err.Error() != "remote shelter feed returned status 500: 500 Internal Server Error" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRemoteDirectory_ListShelters_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	dir := NewRemoteDirectory(server.URL, "district-feed")
	_, err := dir.ListShelters(context.Background(), ListOptions{})

	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestRemoteDirectory_GetShelter_Found(t *testing.T) {
	testShelters := []model.Shelter{
		{Name: "PPS Satu", DistanceKM: 1},
		{Name: "PPS Dua", DistanceKM: 2, Features: "Ample parking"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testShelters)
	}))
	defer server.Close()

	dir := NewRemoteDirectory(server.URL, "district-feed")
	entry, err := dir.GetShelter(context.Background(), "PPS Dua")

	if err != nil {
		t.Fatalf("GetShelter failed: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry, got nil")
	}
	if entry.Name != "PPS Dua" {
		t.Errorf("expected name 'PPS Dua', got %s", entry.Name)
	}
	if entry.Features != "Ample parking" {
		t.Errorf("expected features 'Ample parking', got %s", entry.Features)
	}
}

func TestRemoteDirectory_GetShelter_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Shelter{{Name: "PPS Satu"}})
	}))
	defer server.Close()

	dir := NewRemoteDirectory(server.URL, "district-feed")
	entry, err := dir.GetShelter(context.Background(), "nonexistent")

	if err != nil {
		t.Errorf("GetShelter failed: %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil for nonexistent shelter, got %+v", entry)
	}
}

func TestRemoteDirectory_NetworkError(t *testing.T) {
	dir := NewRemoteDirectory("http://invalid-url-that-should-not-exist.local", "district-feed")
	_, err := dir.ListShelters(context.Background(), ListOptions{})

	if err == nil {
		t.Error("expected network error, got nil")
	}
}

func TestRemoteDirectory_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Shelter{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	dir := NewRemoteDirectory(server.URL, "district-feed")
	_, err := dir.ListShelters(ctx, ListOptions{})

	if err == nil {
		t.Error("expected context cancellation error, got nil")
	}
}
