package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quillback/quill/internal/api"
)

// Replacer swaps a document's stored chunk and figure set for a freshly
// computed one. New records are written before stale ones are deleted:
// ids are content-derived, so unchanged records are overwritten in place
// and a concurrent reader only ever sees complete old or complete new
// records.
type Replacer struct {
	store      Store
	figures    FigureStore
	collection string
	dims       uint

	maxAttempts int
	backoffBase time.Duration
}

type ReplacerOption func(*Replacer)

func NewReplacer(s Store, figs FigureStore, collection string, dims uint, opts ...ReplacerOption) *Replacer {
	r := &Replacer{
		store:       s,
		figures:     figs,
		collection:  collection,
		dims:        dims,
		maxAttempts: 3,
		backoffBase: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithReplaceAttempts(n int) ReplacerOption {
	return func(r *Replacer) {
		r.maxAttempts = n
	}
}

func WithReplaceBackoff(d time.Duration) ReplacerOption {
	return func(r *Replacer) {
		r.backoffBase = d
	}
}

// Replace commits the full chunk and figure set for one document,
// retrying transient backend failures a bounded number of times. On
// final failure the previously stored data remains consistent; old and
// new chunks may coexist until the document is re-ingested.
func (r *Replacer) Replace(ctx context.Context, doc *api.Document, chunks []*api.Chunk, figs []*api.Figure) error {
	var lastErr error

	for attempt := range r.maxAttempts {
		if attempt > 0 {
			delay := r.backoffBase << (attempt - 1)
			slog.Warn("transient store failure, backing off", "doc", doc.ID, "attempt", attempt, "delay", delay, "err", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := r.replaceOnce(ctx, doc, chunks, figs)
		if err == nil {
			return nil
		}

		var storeErr *Error
		if !errors.As(err, &storeErr) || !storeErr.Transient() {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func (r *Replacer) replaceOnce(ctx context.Context, doc *api.Document, chunks []*api.Chunk, figs []*api.Figure) error {
	if err := r.store.EnsureCollection(ctx, r.collection, r.dims); err != nil {
		return err
	}

	if err := r.store.Upsert(ctx, r.collection, ChunkPoints(chunks)); err != nil {
		return err
	}

	keep := make(map[string]bool, len(chunks))
	for _, ch := range chunks {
		keep[ch.ID] = true
	}

	stored, err := r.store.ListIDs(ctx, r.collection, doc.ID)
	if err != nil {
		return err
	}

	var stale []string
	for _, id := range stored {
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if err := r.store.Delete(ctx, r.collection, stale); err != nil {
		return err
	}

	if r.figures == nil {
		return nil
	}

	keepFigs := make(map[string]bool, len(figs))
	for _, fig := range figs {
		keepFigs[fig.ID] = true
		if err := r.figures.Put(ctx, fig); err != nil {
			return err
		}
	}

	storedFigs, err := r.figures.ListIDs(ctx, doc.ID)
	if err != nil {
		return err
	}

	var staleFigs []string
	for _, id := range storedFigs {
		if !keepFigs[id] {
			staleFigs = append(staleFigs, id)
		}
	}
	return r.figures.Delete(ctx, doc.ID, staleFigs)
}
