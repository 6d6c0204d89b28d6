package fetchers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Source yields the raw bytes of one dataset.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// NewSource picks an HTTP source for http(s) locations and a file source
// for everything else.
func NewSource(name, location string, client *resty.Client) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(name, location, client)
	}
	return &FileSource{name: name, path: location}
}

// FileSource reads a dataset from the local filesystem.
type FileSource struct {
	name string
	path string
}

// NewFileSource creates a file-backed source.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string { return s.name }

// Fetch reads the whole file. ctx is only checked before the read.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, nil
}

// StaticSource serves fixed bytes. Used for embedded fixtures and tests.
type StaticSource struct {
	name string
	data []byte
}

// NewStaticSource wraps data as a source.
func NewStaticSource(name string, data []byte) *StaticSource {
	return &StaticSource{name: name, data: data}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, nil
}
