package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/utils"
)

// RemoteDirectory fetches shelters from a remote HTTP endpoint serving a
// JSON array, e.g. a district disaster-management feed.
type RemoteDirectory struct {
	BaseURL string
	Source  string // Source label stamped on fetched entries
}

// NewRemoteDirectory creates a new remote shelter source.
func NewRemoteDirectory(baseURL, sourceName string) *RemoteDirectory {
	if sourceName == "" {
		sourceName = constants.ShelterSourceRemote
	}
	return &RemoteDirectory{
		BaseURL: baseURL,
		Source:  sourceName,
	}
}

// ListShelters fetches and returns all entries from the remote feed.
func (r *RemoteDirectory) ListShelters(ctx context.Context, opts ListOptions) ([]model.Shelter, error) {
	// Use a default timeout only if no deadline is set in context
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	// No client timeout so the context deadline takes precedence
	client := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "SafeRoute/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote shelter feed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			utils.Warn("Failed to close shelter feed response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote shelter feed returned status %d: %s", resp.StatusCode, resp.Status)
	}

	var shelters []model.Shelter
	if err := json.NewDecoder(resp.Body).Decode(&shelters); err != nil {
		return nil, fmt.Errorf("failed to decode shelter feed response: %w", err)
	}

	// Label all entries with the source name
	for i := range shelters {
		shelters[i].Source = r.Source
	}

	return shelters, nil
}

// GetShelter finds a specific shelter by name from the remote feed.
func (r *RemoteDirectory) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	shelters, err := r.ListShelters(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}

	for _, s := range shelters {
		if s.Name == name {
			return &s, nil
		}
	}

	return nil, nil // Not found
}
