package storage

import (
	"context"
)

// Client stores the generated dashboard artifacts.
type Client interface {
	// Close releases the client
	Close() error

	// StoreFile writes a file at a path relative to the client's root
	StoreFile(ctx context.Context, name string, data []byte) error

	// GetFile reads a stored file
	GetFile(ctx context.Context, name string) ([]byte, error)

	// FileExists reports whether a file is stored under name
	FileExists(ctx context.Context, name string) (bool, error)

	// List returns the stored file names, sorted
	List(ctx context.Context) ([]string, error)
}
