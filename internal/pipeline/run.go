package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/transport"
)

var ErrDocumentLocked = errors.New("document is being ingested elsewhere")

const lockTTL = 10 * time.Minute

// Runner ingests a batch of source files with bounded concurrency.
// Documents fail independently; one bad file never aborts the batch.
type Runner struct {
	co      *Coordinator
	locker  transport.Locker
	tracer  transport.Transport
	workers int
}

type RunnerOption func(*Runner)

func NewRunner(co *Coordinator, opts ...RunnerOption) *Runner {
	r := &Runner{
		co:      co,
		workers: 4,
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithLocker guards each document with a short-lived lock so two
// runners never ingest the same document at once.
func WithLocker(l transport.Locker) RunnerOption {
	return func(r *Runner) {
		r.locker = l
	}
}

// WithTracer records a per-document ingestion trace keyed by document
// id.
func WithTracer(t transport.Transport) RunnerOption {
	return func(r *Runner) {
		r.tracer = t
	}
}

// Run ingests every file and returns one result per input, in input
// order.
func (r *Runner) Run(ctx context.Context, files []api.SourceFile) []*Result {
	results := make([]*Result, len(files))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, file := range files {
		g.Go(func() error {
			results[i] = r.runOne(ctx, file)
			return nil
		})
	}
	g.Wait()

	return results
}

func (r *Runner) runOne(ctx context.Context, file api.SourceFile) *Result {
	docID := DocumentID(file.Name)

	if r.locker != nil {
		ok, err := r.locker.Acquire(ctx, docID, lockTTL)
		if err != nil {
			res := &Result{DocID: docID, SourceFile: file.Name}
			return res.fail(StageLock, err)
		}
		if !ok {
			res := &Result{DocID: docID, SourceFile: file.Name}
			return res.fail(StageLock, ErrDocumentLocked)
		}
		defer r.locker.Release(context.WithoutCancel(ctx), docID)
	}

	started := time.Now()
	r.trace(ctx, &transport.IngestTrace{
		ID:         docID,
		SourceFile: file.Name,
		Status:     transport.TraceStatusRunning,
		StartedAt:  started.Unix(),
	})

	res := r.co.Ingest(ctx, file)

	trace := &transport.IngestTrace{
		ID:          docID,
		SourceFile:  file.Name,
		Status:      transport.TraceStatusCompleted,
		ChunkCount:  res.ChunkCount,
		FigureCount: res.FigureCount,
		StartedAt:   started.Unix(),
		CompletedAt: time.Now().Unix(),
	}
	if res.Status == StatusFailed {
		trace.Status = transport.TraceStatusFailed
		trace.Stage = string(res.Stage)
		trace.FailReason = res.Err.Error()
		// embed and store failures are environmental, the same input
		// can succeed on a later run
		trace.NeedsReingest = res.Stage == StageEmbed || res.Stage == StageStore
	}
	r.trace(context.WithoutCancel(ctx), trace)

	return res
}

func (r *Runner) trace(ctx context.Context, trace *transport.IngestTrace) {
	if r.tracer == nil {
		return
	}
	if err := r.tracer.SetTrace(ctx, trace); err != nil {
		slog.Warn("failed to record ingestion trace", "doc", trace.ID, "err", err)
	}
}
