package directory

import (
	"context"
	_ "embed"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDirectoryData []byte

// DefaultDirectory provides the pilot PPS entries embedded in the binary
type DefaultDirectory struct {
	Source string
}

// NewDefaultDirectory creates a new default shelter source
func NewDefaultDirectory() *DefaultDirectory {
	return &DefaultDirectory{
		Source: constants.ShelterSourceDefault,
	}
}

// ListShelters returns all bundled shelter entries
func (d *DefaultDirectory) ListShelters(ctx context.Context, opts ListOptions) ([]model.Shelter, error) {
	var shelters []model.Shelter
	if err := yaml.Unmarshal(defaultDirectoryData, &shelters); err != nil {
		return nil, err
	}

	// Label all entries with the default source
	for i := range shelters {
		shelters[i].Source = d.Source
	}

	return shelters, nil
}

// GetShelter finds a specific shelter by name from the bundled entries
func (d *DefaultDirectory) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	shelters, err := d.ListShelters(ctx, ListOptions{})
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
