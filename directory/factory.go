package directory

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/utils"
)

// DirectoryFactory creates shelter directories with consistent source ordering
type DirectoryFactory struct{}

// NewFactory creates a new directory factory
func NewFactory() *DirectoryFactory {
	return &DirectoryFactory{}
}

// CreateStandardManager creates a directory manager with all standard sources.
// Resolution order: local -> remote feeds -> bundled defaults (highest to
// lowest priority)
func (f *DirectoryFactory) CreateStandardManager(ctx context.Context, cfg *config.Config) *DirectoryManager {
	var sources []ShelterSource

	// 1. Local file (HIGHEST precedence - the operator's own list overrides everything)
	localPath := f.getLocalShelterPath(cfg)
	sources = append(sources, NewLocalDirectory(localPath))
	utils.Debug("Added local shelter source: %s (highest precedence)", localPath)

	// 2. Remote feeds from config (in order specified by the operator)
	sources = append(sources, f.loadRemoteSources(cfg)...)

	// 3. Bundled defaults (LOWEST precedence - pilot deployment fallbacks)
	sources = append(sources, NewDefaultDirectory())
	utils.Debug("Added default shelter source with pilot entries (lowest precedence)")

	utils.Debug("Created shelter directory with %d sources", len(sources))
	return NewDirectoryManager(sources...)
}

// loadRemoteSources loads all remote shelter feeds from config
func (f *DirectoryFactory) loadRemoteSources(cfg *config.Config) []ShelterSource {
	var sources []ShelterSource

	if cfg == nil {
		return sources
	}

	for _, srcCfg := range cfg.Shelters {
		if srcCfg.Type == constants.ShelterSourceRemote && srcCfg.URL != "" {
			sources = append(sources, NewRemoteDirectory(srcCfg.URL, constants.ShelterSourceRemote))
			utils.Debug("Added remote shelter feed: %s", srcCfg.URL)
		}
	}

	return sources
}

// getLocalShelterPath determines the local shelter file path from config
func (f *DirectoryFactory) getLocalShelterPath(cfg *config.Config) string {
	if cfg == nil {
		return config.DefaultShelterPath
	}

	for _, srcCfg := range cfg.Shelters {
		if srcCfg.Type == constants.ShelterSourceLocal && srcCfg.Path != "" {
			// Sanitize the path to prevent path traversal attacks
			cleanPath := filepath.Clean(srcCfg.Path)

			// Only reject paths with .. components; absolute paths are
			// allowed for system-wide installs
			if strings.Contains(cleanPath, "..") {
				utils.Warn("Path traversal attempt detected in shelter path '%s', using default", srcCfg.Path)
				return config.DefaultShelterPath
			}

			return cleanPath
		}
	}

	return config.DefaultShelterPath
}
