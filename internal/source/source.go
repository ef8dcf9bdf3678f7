// Package source abstracts where documents are fetched from before
// ingestion. A source lists candidate files and fetches their raw
// bytes; it knows nothing about parsing or chunking.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillback/quill/internal/api"
)

var ErrInvalidSourceType = errors.New("invalid source type")

type Source interface {
	// List returns the names of all files the source currently holds,
	// relative to the source root.
	List(ctx context.Context) ([]string, error)

	// Fetch returns one file's raw bytes.
	Fetch(ctx context.Context, name string) (api.SourceFile, error)

	Type() api.SourceType
}

type Config struct {
	Type string `yaml:"type"`

	// Path is the root directory for filesystem sources.
	Path string `yaml:"path"`

	// Bucket and Prefix locate blob sources.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

func NewSource(ctx context.Context, cfg Config) (Source, error) {
	switch cfg.Type {
	case "filesystem":
		return NewFilesystem(cfg.Path), nil
	case "blob":
		return NewBlob(ctx, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidSourceType, cfg.Type)
	}
}
