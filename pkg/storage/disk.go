// Package storage provides a small filesystem abstraction with two drivers:
//   - "local": local filesystem (default); holds the session file and exports
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces) for exports
//
// Quick start:
//
//	disk, err := storage.Open(config.StorageDefault())
//	err = disk.Put("exports/orders-20240101.csv", data)
//	url := disk.URL("exports/orders-20240101.csv")
package storage

import "errors"

// ErrNotFound is returned by Get when path does not exist.
var ErrNotFound = errors.New("storage: not found")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// Get returns the full content of the file at path, or ErrNotFound.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// URL returns a locator for path (file path or object URL).
	URL(path string) string
}
