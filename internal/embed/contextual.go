package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/token"
)

// Contextual embeds a document's chunks through a Provider. Chunks are
// submitted as a bounded sequence of ordered sub-batches so the backend
// sees as much contiguous context per call as its limits allow; a single
// chunk's text is never split across calls. Transient failures are
// retried with exponential backoff, and no vector is assigned until
// every sub-batch has succeeded.
type Contextual struct {
	provider Provider

	maxBatchSize   int
	maxBatchTokens int
	maxAttempts    int
	backoffBase    time.Duration
	limiter        *rate.Limiter
}

type ContextualOption func(*Contextual)

func NewContextual(p Provider, opts ...ContextualOption) *Contextual {
	c := &Contextual{
		provider:       p,
		maxBatchSize:   96,
		maxBatchTokens: 8192,
		maxAttempts:    5,
		backoffBase:    500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithMaxBatchSize(n int) ContextualOption {
	return func(c *Contextual) {
		c.maxBatchSize = n
	}
}

func WithMaxBatchTokens(n int) ContextualOption {
	return func(c *Contextual) {
		c.maxBatchTokens = n
	}
}

func WithMaxAttempts(n int) ContextualOption {
	return func(c *Contextual) {
		c.maxAttempts = n
	}
}

func WithBackoffBase(d time.Duration) ContextualOption {
	return func(c *Contextual) {
		c.backoffBase = d
	}
}

func WithLimiter(l *rate.Limiter) ContextualOption {
	return func(c *Contextual) {
		c.limiter = l
	}
}

// EmbedChunks fills in the Embedding of every chunk, in order. On error
// no chunk is modified: partial embedding would leave chunks silently
// unsearchable, which is strictly worse than full failure.
func (c *Contextual) EmbedChunks(ctx context.Context, chunks []*api.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([][]float32, 0, len(chunks))
	for _, batch := range c.splitBatches(chunks) {
		texts := make([]string, 0, len(batch))
		for _, ch := range batch {
			texts = append(texts, ch.Text)
		}

		vals, err := c.embedWithRetry(ctx, texts)
		if err != nil {
			return err
		}

		if len(vals) != len(texts) {
			return &Error{
				Kind: KindInvalid,
				Err:  fmt.Errorf("provider returned %d vectors for %d chunks", len(vals), len(texts)),
			}
		}

		dims := c.provider.Dimensions()
		for _, v := range vals {
			if uint(len(v)) != dims {
				return &Error{
					Kind: KindInvalid,
					Err:  fmt.Errorf("provider returned a %d-dimensional vector, expected %d", len(v), dims),
				}
			}
		}

		vectors = append(vectors, vals...)
	}

	for i, ch := range chunks {
		ch.Embedding = vectors[i]
	}
	return nil
}

// splitBatches closes a sub-batch at the chunk count limit or the total
// token limit, whichever comes first. An oversized chunk above the token
// limit travels alone.
func (c *Contextual) splitBatches(chunks []*api.Chunk) [][]*api.Chunk {
	var batches [][]*api.Chunk
	var batch []*api.Chunk
	batchTokens := 0

	for _, ch := range chunks {
		n := ch.TokenCount
		if n == 0 {
			n = token.Count(ch.Text)
		}

		if len(batch) > 0 && (len(batch) >= c.maxBatchSize || batchTokens+n > c.maxBatchTokens) {
			batches = append(batches, batch)
			batch = nil
			batchTokens = 0
		}

		batch = append(batch, ch)
		batchTokens += n
	}

	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	return batches
}

func (c *Contextual) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := range c.maxAttempts {
		if attempt > 0 {
			delay := c.backoffBase << (attempt - 1)
			slog.Warn("transient embedding failure, backing off", "attempt", attempt, "delay", delay, "err", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vals, err := c.provider.EmbedBatch(ctx, texts)
		if err == nil {
			return vals, nil
		}

		kind := classify(err)
		if !kind.Transient() {
			return nil, &Error{Kind: kind, Err: err}
		}
		lastErr = err
	}

	return nil, &Error{Kind: classify(lastErr), Err: lastErr}
}
