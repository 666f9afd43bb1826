package blob

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/utils"
)

func TestMain(m *testing.M) {
	os.Exit(utils.WithCleanDir(m, config.DefaultConfigDir))
}

func newTestFilesystemBlobStore(t *testing.T) *FilesystemBlobStore {
	dir := filepath.Join(t.TempDir(), t.Name()+"-blobstore")
	store, err := NewFilesystemBlobStore(dir)
	if err != nil {
		t.Fatalf("NewFilesystemBlobStore failed: %v", err)
	}
	return store
}

func TestFilesystemBlobStore_RoundTrip(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	value := []byte(`{"jamai_status":"success"}`)
	mime := "application/json"
	filename := "exchange.json"
	url, err := store.Put(context.Background(), value, mime, filename)
	if err != nil {
		t.Errorf("Put failed: %v", err)
	}
	got, err := store.Get(context.Background(), url)
	if err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("expected %q, got %q", value, got)
	}
}

func TestFilesystemBlobStore_EmptyFilename(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	url, err := store.Put(context.Background(), []byte("x"), "text/plain", "")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if url == "file://" {
		t.Errorf("expected generated filename in URL, got %q", url)
	}
	if _, err := store.Get(context.Background(), url); err != nil {
		t.Errorf("Get failed for generated filename: %v", err)
	}
}

func TestFilesystemBlobStore_EmptyData(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	url, err := store.Put(context.Background(), []byte{}, "text/plain", "empty.txt")
	if err != nil {
		t.Errorf("Put failed for empty data: %v", err)
	}
	got, err := store.Get(context.Background(), url)
	if err != nil {
		t.Errorf("Get failed for empty data: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty data, got %v bytes", len(got))
	}
}

func TestFilesystemBlobStore_GetInvalidURL(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	if _, err := store.Get(context.Background(), "http://example.com/not-a-file"); err == nil {
		t.Error("expected error for non-file URL")
	}
	if _, err := store.Get(context.Background(), "file:///does/not/exist"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewDefaultBlobStore(t *testing.T) {
	ctx := context.Background()

	t.Run("NilConfigUsesFilesystem", func(t *testing.T) {
		store, err := NewDefaultBlobStore(ctx, nil)
		if err != nil {
			t.Fatalf("NewDefaultBlobStore failed: %v", err)
		}
		if _, ok := store.(*FilesystemBlobStore); !ok {
			t.Errorf("expected FilesystemBlobStore, got %T", store)
		}
	})

	t.Run("ExplicitDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "archive")
		store, err := NewDefaultBlobStore(ctx, &config.BlobConfig{Driver: "filesystem", Directory: dir})
		if err != nil {
			t.Fatalf("NewDefaultBlobStore failed: %v", err)
		}
		url, err := store.Put(ctx, []byte("x"), "text/plain", "a.txt")
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if want := "file://" + filepath.Join(dir, "a.txt"); url != want {
			t.Errorf("expected %q, got %q", want, url)
		}
	})

	t.Run("S3RequiresBucketAndRegion", func(t *testing.T) {
		if _, err := NewDefaultBlobStore(ctx, &config.BlobConfig{Driver: "s3"}); err == nil {
			t.Error("expected error for s3 without bucket and region")
		}
		if _, err := NewDefaultBlobStore(ctx, &config.BlobConfig{Driver: "s3", Bucket: "b"}); err == nil {
			t.Error("expected error for s3 without region")
		}
	})

	t.Run("UnsupportedDriver", func(t *testing.T) {
		if _, err := NewDefaultBlobStore(ctx, &config.BlobConfig{Driver: "gcs"}); err == nil {
			t.Error("expected error for unsupported driver")
		}
	})
}
