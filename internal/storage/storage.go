// Package storage persists backup snapshot files by generated name.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidName    = errors.New("invalid object name")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// Storage is durable byte storage addressed by flat object names.
type Storage interface {
	// Put writes data under name, replacing any previous object.
	Put(ctx context.Context, name string, data []byte) error

	// Open returns a reader for the object and its size in bytes.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	Exists(ctx context.Context, name string) (bool, error)

	// Usage returns the total bytes held by all stored objects.
	Usage(ctx context.Context) (int64, error)

	// Location describes where objects live, for operator display.
	Location() string
}

// ValidName rejects names that could escape the storage root.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// ReadAll opens name and reads it fully.
func ReadAll(ctx context.Context, s Storage, name string) ([]byte, error) {
	rc, _, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
