// Package pipeline orchestrates one document's ingestion: parse, chunk,
// associate figures, embed, then atomically replace the stored set. Any
// failure before the store step writes nothing, so existing stored
// state for the document is never degraded by a failed run.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/chunker"
	"github.com/quillback/quill/internal/embed"
	"github.com/quillback/quill/internal/figures"
	"github.com/quillback/quill/internal/parser"
	"github.com/quillback/quill/internal/store"
)

type Status int

const (
	StatusCompleted Status = iota
	StatusFailed
)

type Stage string

const (
	StageLock    Stage = "lock"
	StageParse   Stage = "parse"
	StageChunk   Stage = "chunk"
	StageFigures Stage = "figures"
	StageEmbed   Stage = "embed"
	StageStore   Stage = "store"
)

// Result is the per-document ingestion outcome. There is no partial
// state: a document either committed completely or failed before any
// write.
type Result struct {
	DocID      string
	SourceFile string
	Status     Status
	Stage      Stage

	ChunkCount  int
	FigureCount int

	Err error
}

type Coordinator struct {
	parser   parser.Parser
	chunker  *chunker.Chunker
	embedder *embed.Contextual
	replacer *store.Replacer

	retainImages bool
}

type CoordinatorOption func(*Coordinator)

func NewCoordinator(p parser.Parser, c *chunker.Chunker, e *embed.Contextual, r *store.Replacer, opts ...CoordinatorOption) *Coordinator {
	co := &Coordinator{
		parser:   p,
		chunker:  c,
		embedder: e,
		replacer: r,
	}

	for _, opt := range opts {
		opt(co)
	}
	return co
}

// WithRetainImages keeps figure image payloads in stored figure
// records. Off by default; intended for debugging.
func WithRetainImages(retain bool) CoordinatorOption {
	return func(co *Coordinator) {
		co.retainImages = retain
	}
}

// Ingest runs the full pipeline for one source file. It is
// deterministic for unchanged input: the same bytes yield the same
// document, chunk and figure ids, which makes a wholesale retry safe.
func (co *Coordinator) Ingest(ctx context.Context, file api.SourceFile) *Result {
	docID := DocumentID(file.Name)
	res := &Result{DocID: docID, SourceFile: file.Name}

	slog.Info("ingesting document", "source", file.Name, "doc", docID)

	parsed, err := co.parser.Parse(ctx, file.Name, file.Data)
	if err != nil {
		return res.fail(StageParse, err)
	}

	drafts, err := co.chunker.Chunk(parsed.Elements)
	if err != nil {
		return res.fail(StageChunk, err)
	}

	chunks := make([]*api.Chunk, 0, len(drafts))
	for i, d := range drafts {
		chunks = append(chunks, &api.Chunk{
			ID:         ChunkID(docID, i, d.Text),
			DocID:      docID,
			Index:      i,
			Text:       d.Text,
			TokenCount: d.TokenCount,
			PageStart:  d.PageStart,
			PageEnd:    d.PageEnd,
			Oversized:  d.Oversized,
			SourceFile: file.Name,
			Strategy:   co.parser.Strategy(),
		})
	}

	figs := co.buildFigures(docID, parsed.Figures)
	if err := figures.Associate(figs, chunks); err != nil {
		return res.fail(StageFigures, err)
	}

	if err := co.embedder.EmbedChunks(ctx, chunks); err != nil {
		return res.fail(StageEmbed, err)
	}

	doc := &api.Document{
		ID:          docID,
		SourceFile:  file.Name,
		SourceType:  file.Type,
		Strategy:    co.parser.Strategy(),
		IngestedAt:  time.Now().UTC(),
		ChunkCount:  len(chunks),
		FigureCount: len(figs),
	}

	if err := co.replacer.Replace(ctx, doc, chunks, figs); err != nil {
		return res.fail(StageStore, err)
	}

	res.Status = StatusCompleted
	res.ChunkCount = len(chunks)
	res.FigureCount = len(figs)

	slog.Info("document ingested", "source", file.Name, "doc", docID, "chunks", res.ChunkCount, "figures", res.FigureCount)
	return res
}

func (co *Coordinator) buildFigures(docID string, parsed []api.ParsedFigure) []*api.Figure {
	pageSeq := make(map[int]int)

	figs := make([]*api.Figure, 0, len(parsed))
	for _, pf := range parsed {
		seq := pageSeq[pf.PageIndex]
		pageSeq[pf.PageIndex] = seq + 1

		fig := &api.Figure{
			ID:        FigureID(docID, pf.PageIndex, seq),
			DocID:     docID,
			PageIndex: pf.PageIndex,
			Caption:   pf.Caption,
			Ref:       pf.Ref,
		}
		if co.retainImages {
			fig.Image = pf.Image
		}
		figs = append(figs, fig)
	}
	return figs
}

func (r *Result) fail(stage Stage, err error) *Result {
	r.Status = StatusFailed
	r.Stage = stage
	r.Err = err
	slog.Error("ingestion failed", "source", r.SourceFile, "doc", r.DocID, "stage", stage, "err", err)
	return r
}
