package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jawat-my/saferoute/model"
)

// DirectoryManager merges shelter sources in precedence order: an entry
// shadows same-named entries from lower-precedence sources.
type DirectoryManager struct {
	sources []ShelterSource
}

func NewDirectoryManager(sources ...ShelterSource) *DirectoryManager {
	return &DirectoryManager{sources: sources}
}

// ListShelters aggregates entries from all sources, first source wins per
// shelter name.
func (m *DirectoryManager) ListShelters(ctx context.Context, opts ListOptions) ([]model.Shelter, error) {
	seen := make(map[string]bool)
	var all []model.Shelter
	for _, src := range m.sources {
		shelters, err := src.ListShelters(ctx, ListOptions{})
		if err != nil {
			return nil, err
		}
		for _, s := range shelters {
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			all = append(all, s)
		}
	}
	return filterShelters(all, opts), nil
}

// GetShelter finds a shelter by name from the highest-precedence source
// that has it.
func (m *DirectoryManager) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	for _, src := range m.sources {
		entry, err := src.GetShelter(ctx, name)
		if err == nil && entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

// SourceStats reports entry counts per source type. Failing sources report
// -1 so diagnostics can flag them.
func (m *DirectoryManager) SourceStats(ctx context.Context) map[string]int {
	stats := make(map[string]int)
	for _, src := range m.sources {
		shelters, err := src.ListShelters(ctx, ListOptions{})
		if err != nil {
			stats[fmt.Sprintf("%T", src)] = -1
			continue
		}
		stats[fmt.Sprintf("%T", src)] = len(shelters)
	}
	return stats
}

func filterShelters(shelters []model.Shelter, opts ListOptions) []model.Shelter {
	if opts.Query == "" {
		return shelters
	}
	query := strings.ToLower(opts.Query)
	var matched []model.Shelter
	for _, s := range shelters {
		haystack := strings.ToLower(s.Name + " " + s.Features + " " + s.Constraints)
		if strings.Contains(haystack, query) {
			matched = append(matched, s)
		}
	}
	return matched
}
