package embed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/embed"
	httpx "github.com/quillback/quill/internal/http"
)

type fakeProvider struct {
	dims     uint
	calls    [][]string
	failures int
	failErr  error
	badCount bool
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.failures > 0 {
		f.failures--
		return nil, f.failErr
	}

	n := len(texts)
	if f.badCount {
		n--
	}

	vals := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		vec := make([]float32, f.dims)
		vec[0] = float32(len(texts[i]))
		vals = append(vals, vec)
	}
	return vals, nil
}

func (f *fakeProvider) Dimensions() uint {
	return f.dims
}

func makeChunks(texts ...string) []*api.Chunk {
	chunks := make([]*api.Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, &api.Chunk{Index: i, Text: t, TokenCount: 1})
	}
	return chunks
}

func TestEmbedChunksOrderAcrossSubBatches(t *testing.T) {
	prov := &fakeProvider{dims: 4}
	c := embed.NewContextual(prov, embed.WithMaxBatchSize(2))

	chunks := makeChunks("a", "bb", "ccc", "dddd", "eeeee")
	if err := c.EmbedChunks(context.Background(), chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(prov.calls) != 3 {
		t.Errorf("expected 3 sub-batches, got %d", len(prov.calls))
	}

	for i, ch := range chunks {
		if ch.Embedding == nil {
			t.Fatalf("chunk %d has no embedding", i)
		}
		if got := ch.Embedding[0]; got != float32(len(ch.Text)) {
			t.Errorf("chunk %d received the wrong vector: marker %v, text length %d", i, got, len(ch.Text))
		}
	}
}

func TestEmbedChunksTokenBudgetClosesBatch(t *testing.T) {
	prov := &fakeProvider{dims: 2}
	c := embed.NewContextual(prov, embed.WithMaxBatchSize(100), embed.WithMaxBatchTokens(10))

	chunks := makeChunks("a", "b", "c")
	for _, ch := range chunks {
		ch.TokenCount = 6
	}

	if err := c.EmbedChunks(context.Background(), chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prov.calls) != 3 {
		t.Errorf("expected one chunk per sub-batch under the token budget, got %d calls", len(prov.calls))
	}
}

func TestEmbedChunksRetriesTransient(t *testing.T) {
	prov := &fakeProvider{
		dims:     2,
		failures: 2,
		failErr:  &httpx.StatusError{Code: 503, Body: "unavailable"},
	}
	c := embed.NewContextual(prov,
		embed.WithMaxAttempts(5),
		embed.WithBackoffBase(time.Millisecond),
	)

	chunks := makeChunks("hello", "world")
	if err := c.EmbedChunks(context.Background(), chunks); err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if len(prov.calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(prov.calls))
	}
}

func TestEmbedChunksPermanentFailsImmediately(t *testing.T) {
	prov := &fakeProvider{
		dims:     2,
		failures: 10,
		failErr:  &httpx.StatusError{Code: 400, Body: "bad request"},
	}
	c := embed.NewContextual(prov, embed.WithBackoffBase(time.Millisecond))

	chunks := makeChunks("hello")
	err := c.EmbedChunks(context.Background(), chunks)
	if err == nil {
		t.Fatal("expected an error")
	}

	var embedErr *embed.Error
	if !errors.As(err, &embedErr) || embedErr.Kind != embed.KindInvalid {
		t.Errorf("expected KindInvalid, got %v", err)
	}
	if len(prov.calls) != 1 {
		t.Errorf("permanent errors must not be retried, got %d attempts", len(prov.calls))
	}
	if chunks[0].Embedding != nil {
		t.Error("no embedding may be assigned after a failure")
	}
}

func TestEmbedChunksAttemptCap(t *testing.T) {
	prov := &fakeProvider{
		dims:     2,
		failures: 10,
		failErr:  &httpx.StatusError{Code: 429, Body: "slow down"},
	}
	c := embed.NewContextual(prov,
		embed.WithMaxAttempts(3),
		embed.WithBackoffBase(time.Millisecond),
	)

	chunks := makeChunks("hello")
	err := c.EmbedChunks(context.Background(), chunks)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}

	var embedErr *embed.Error
	if !errors.As(err, &embedErr) || embedErr.Kind != embed.KindRateLimited {
		t.Errorf("expected KindRateLimited, got %v", err)
	}
	if len(prov.calls) != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", len(prov.calls))
	}
}

func TestEmbedChunksVectorCountMismatch(t *testing.T) {
	prov := &fakeProvider{dims: 2, badCount: true}
	c := embed.NewContextual(prov)

	chunks := makeChunks("hello", "world")
	err := c.EmbedChunks(context.Background(), chunks)

	var embedErr *embed.Error
	if !errors.As(err, &embedErr) || embedErr.Kind != embed.KindInvalid {
		t.Errorf("expected KindInvalid on count mismatch, got %v", err)
	}
	for _, ch := range chunks {
		if ch.Embedding != nil {
			t.Error("no embedding may be assigned after a failure")
		}
	}
}
