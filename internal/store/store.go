// Package store persists embedded chunks and figures. Replacement is
// idempotent: identifiers are content-derived, so re-ingesting unchanged
// content rewrites the same records and deleting stale ids is the only
// cleanup a rerun ever needs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillback/quill/internal/api"
)

var (
	ErrInvalidStoreType      = errors.New("no store found for given type")
	ErrFailedStoreInitialize = errors.New("failed to initialise store")
)

type Kind int

const (
	// KindUnavailable marks a transient backend failure worth retrying.
	KindUnavailable Kind = iota
	// KindInvalid marks a permanent failure; retrying reproduces it.
	KindInvalid
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store error: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Transient() bool {
	return e.Kind == KindUnavailable
}

// Point is one stored vector record.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

type Store interface {
	EnsureCollection(ctx context.Context, name string, dims uint) error
	Upsert(ctx context.Context, collection string, points []*Point) error

	// ListIDs returns the ids of every point stored for a document.
	ListIDs(ctx context.Context, collection string, docID string) ([]string, error)
	Delete(ctx context.Context, collection string, ids []string) error

	Close() error
}

const (
	StoreTypeQdrant = iota
	StoreTypePGVector
	StoreTypeMemory
)

var storeTypeMap = map[string]StoreType{
	"qdrant":   StoreTypeQdrant,
	"pgvector": StoreTypePGVector,
	"memory":   StoreTypeMemory,
}

type StoreType int

type Config struct {
	Type string
	Host string
	Port int
	DSN  string
}

func NewStore(ctx context.Context, cfg Config) (Store, error) {
	storeType, ok := storeTypeMap[cfg.Type]
	if !ok {
		return nil, ErrInvalidStoreType
	}

	switch storeType {
	case StoreTypeQdrant:
		s, err := NewQdrantStore(cfg.Host, cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedStoreInitialize, err)
		}
		return s, nil
	case StoreTypePGVector:
		s, err := NewPGVectorStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedStoreInitialize, err)
		}
		return s, nil
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, ErrInvalidStoreType
	}
}

// ChunkPoints maps embedded chunks onto store points. The payload holds
// everything a retrieval consumer needs without a second lookup.
func ChunkPoints(chunks []*api.Chunk) []*Point {
	points := make([]*Point, 0, len(chunks))
	for _, ch := range chunks {
		points = append(points, &Point{
			ID:     ch.ID,
			Vector: ch.Embedding,
			Payload: map[string]any{
				"doc_id":      ch.DocID,
				"chunk_index": ch.Index,
				"text":        ch.Text,
				"token_count": ch.TokenCount,
				"page_start":  ch.PageStart,
				"page_end":    ch.PageEnd,
				"oversized":   ch.Oversized,
				"figure_refs": strings.Join(ch.FigureRefs, ","),
				"source_file": ch.SourceFile,
				"strategy":    ch.Strategy,
			},
		})
	}
	return points
}
