package blob

import (
	"context"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/utils"
)

// BlobStore is the interface for pluggable blob storage backends. The relay
// archives request/response exchanges through it.
type BlobStore interface {
	Put(ctx context.Context, data []byte, mime, filename string) (url string, err error)
	Get(ctx context.Context, url string) ([]byte, error)
}

// See filesystem.go and s3.go for driver implementations.

// NewDefaultBlobStore returns a BlobStore based on config, or a
// FilesystemBlobStore under the default archive directory when config is
// nil or empty.
func NewDefaultBlobStore(ctx context.Context, cfg *config.BlobConfig) (BlobStore, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == "filesystem" {
		dir := config.DefaultBlobDir
		if cfg != nil && cfg.Directory != "" {
			dir = cfg.Directory
		}
		return NewFilesystemBlobStore(dir)
	}
	if cfg.Driver == "s3" {
		if cfg.Bucket == "" || cfg.Region == "" {
			return nil, utils.Errorf("s3 driver requires bucket and region")
		}
		return NewS3BlobStore(ctx, cfg.Bucket, cfg.Region)
	}
	return nil, utils.Errorf("unsupported blob driver: %s", cfg.Driver)
}
