// Package storage keeps uploaded product images on a local directory or
// an S3-compatible bucket behind a single Disk interface.
package storage

import (
	"fmt"
	"io"

	"marcha/internal/config"
)

// Disk is the filesystem driver interface implemented by every backend.
type Disk interface {
	// PutStream writes from r to path, creating parent directories as needed.
	PutStream(path string, r io.Reader) error

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// New returns the disk selected by cfg.StorageDisk.
func New(cfg *config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "local":
		return NewLocalDisk(cfg.StorageLocalRoot, cfg.StorageURL)
	case "s3":
		return NewS3Disk(S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("storage: disk %q is not supported", cfg.StorageDisk)
	}
}
