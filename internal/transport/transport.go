package transport

import (
	"context"
	"time"
)

var (
	TraceExpiry = time.Hour * 24
)

// Transport records per-document ingestion traces so operators can see
// what happened to a document after the fact.
type Transport interface {
	SetTrace(ctx context.Context, trace *IngestTrace) error
	GetTrace(ctx context.Context, traceId string) (*IngestTrace, error)
}

// Locker hands out short-lived per-document locks so two workers never
// ingest the same document concurrently.
type Locker interface {
	Acquire(ctx context.Context, docId string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, docId string) error
}

// IngestTrace is keyed by document id; re-ingesting a document
// overwrites its previous trace.
type IngestTrace struct {
	ID            string `redis:"id"`
	SourceFile    string `redis:"source_file"`
	Status        int    `redis:"status"`
	Stage         string `redis:"stage"`
	ChunkCount    int    `redis:"chunk_count"`
	FigureCount   int    `redis:"figure_count"`
	StartedAt     int64  `redis:"started_at"`
	CompletedAt   int64  `redis:"completed_at"`
	FailReason    string `redis:"fail_reason"`
	NeedsReingest bool   `redis:"needs_reingest"`
}

type TraceStatus int

const (
	TraceStatusUnspecified = iota
	TraceStatusRunning
	TraceStatusCompleted
	TraceStatusFailed
)
