// Package storage is the blob store behind admin image uploads.
//
// Two drivers are available:
//   - "local": files under a root directory, served by the app at STORAGE_URL
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disk, err := storage.Open(ctx, storage.FromEnv())
//	url, err := storage.PutImage(ctx, disk, "products", file, header.Size, 5<<20)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shashiranjanraj/storefront/config"
)

// ErrNotExist is returned by Get for a missing object.
var ErrNotExist = errors.New("storage: object does not exist")

// Disk is the driver interface. Paths are slash-separated and relative.
type Disk interface {
	// Put writes size bytes from r to path with the given content type.
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error

	// Get opens the object at path. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// Config selects and configures a driver.
type Config struct {
	Driver string

	LocalRoot string
	LocalURL  string

	S3 S3Config
}

// S3Config configures the s3 driver. Endpoint is empty for AWS itself.
type S3Config struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
	URL      string
}

// FromEnv reads Config from the STORAGE_* and S3_* settings.
func FromEnv() Config {
	return Config{
		Driver:    config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		},
	}
}

// Open builds the configured driver.
func Open(ctx context.Context, cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (supported: local, s3)", cfg.Driver)
	}
}
