package directory

import (
	"context"
	"os"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"gopkg.in/yaml.v3"
)

// ShelterSource is the interface for any shelter-directory backend
// (local YAML file, remote feed, bundled defaults).
type ShelterSource interface {
	ListShelters(ctx context.Context, opts ListOptions) ([]model.Shelter, error)
	GetShelter(ctx context.Context, name string) (*model.Shelter, error)
}

// ListOptions filters directory queries. Query matches case-insensitively
// against shelter names, features, and constraints.
type ListOptions struct {
	Query string
}

// LocalDirectory reads shelters from a YAML file on disk. A missing file
// yields an empty list so operator overrides stay optional.
type LocalDirectory struct {
	Path string
}

func NewLocalDirectory(path string) *LocalDirectory {
	if path == "" {
		path = config.DefaultShelterPath
	}
	return &LocalDirectory{Path: path}
}

func (l *LocalDirectory) ListShelters(ctx context.Context, opts ListOptions) ([]model.Shelter, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var shelters []model.Shelter
	if err := yaml.Unmarshal(data, &shelters); err != nil {
		return nil, err
	}
	for i := range shelters {
		shelters[i].Source = constants.ShelterSourceLocal
	}
	return shelters, nil
}

func (l *LocalDirectory) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	shelters, err := l.ListShelters(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	for _, s := range shelters {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, nil
}
