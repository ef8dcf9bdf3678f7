package figures_test

import (
	"errors"
	"testing"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/figures"
)

func chunk(id string, pageStart, pageEnd int, text string) *api.Chunk {
	return &api.Chunk{ID: id, PageStart: pageStart, PageEnd: pageEnd, Text: text}
}

func refsByChunk(chunks []*api.Chunk) map[string][]string {
	out := make(map[string][]string)
	for _, ch := range chunks {
		out[ch.ID] = ch.FigureRefs
	}
	return out
}

func TestAssociateNoChunks(t *testing.T) {
	err := figures.Associate([]*api.Figure{{ID: "f1"}}, nil)
	if !errors.Is(err, figures.ErrNoChunks) {
		t.Errorf("expected ErrNoChunks, got %v", err)
	}
}

func TestAssociateByPage(t *testing.T) {
	chunks := []*api.Chunk{
		chunk("c0", 0, 0, "first page"),
		chunk("c1", 1, 2, "second and third page"),
	}
	figs := []*api.Figure{
		{ID: "f0", PageIndex: 0},
		{ID: "f1", PageIndex: 2},
	}

	if err := figures.Associate(figs, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refs := refsByChunk(chunks)
	if len(refs["c0"]) != 1 || refs["c0"][0] != "f0" {
		t.Errorf("chunk c0 refs = %v, expected [f0]", refs["c0"])
	}
	if len(refs["c1"]) != 1 || refs["c1"][0] != "f1" {
		t.Errorf("chunk c1 refs = %v, expected [f1]", refs["c1"])
	}
}

func TestAssociateSplitPageUsesCaption(t *testing.T) {
	chunks := []*api.Chunk{
		chunk("c0", 0, 1, "an introduction to pumps"),
		chunk("c1", 1, 1, "flow rate diagram for the impeller assembly"),
	}
	figs := []*api.Figure{
		{ID: "f0", PageIndex: 1, Caption: "impeller flow rate"},
	}

	if err := figures.Associate(figs, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refs := refsByChunk(chunks)
	if len(refs["c1"]) != 1 {
		t.Fatalf("expected caption overlap to assign figure to c1, refs: %v", refs)
	}
}

func TestAssociateSplitPageNoCaptionFallsBackToFirst(t *testing.T) {
	chunks := []*api.Chunk{
		chunk("c0", 1, 1, "alpha"),
		chunk("c1", 1, 1, "beta"),
	}
	figs := []*api.Figure{{ID: "f0", PageIndex: 1}}

	if err := figures.Associate(figs, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(chunks[0].FigureRefs); got != 1 {
		t.Errorf("expected first chunk on the page to own the figure, refs: %v", refsByChunk(chunks))
	}
}

func TestAssociateUncoveredPagePreceding(t *testing.T) {
	chunks := []*api.Chunk{
		chunk("c0", 0, 1, "start"),
		chunk("c1", 4, 5, "end"),
	}
	figs := []*api.Figure{{ID: "f0", PageIndex: 3}}

	if err := figures.Associate(figs, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refs := refsByChunk(chunks)
	if len(refs["c0"]) != 1 || refs["c0"][0] != "f0" {
		t.Errorf("figure on an uncovered page should attach to nearest preceding chunk, refs: %v", refs)
	}
}

func TestAssociateUncoveredPageFollowing(t *testing.T) {
	chunks := []*api.Chunk{
		chunk("c0", 2, 3, "start"),
		chunk("c1", 6, 7, "end"),
	}
	figs := []*api.Figure{{ID: "f0", PageIndex: 0}}

	if err := figures.Associate(figs, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refs := refsByChunk(chunks)
	if len(refs["c0"]) != 1 || refs["c0"][0] != "f0" {
		t.Errorf("figure before any chunk should attach to nearest following chunk, refs: %v", refs)
	}
}

func TestAssociateEveryFigureHasOneOwner(t *testing.T) {
	chunks := []*api.Chunk{
		chunk("c0", 0, 0, "one"),
		chunk("c1", 1, 1, "two"),
		chunk("c2", 2, 3, "three"),
	}
	figs := []*api.Figure{
		{ID: "f0", PageIndex: 0},
		{ID: "f1", PageIndex: 1},
		{ID: "f2", PageIndex: 3},
		{ID: "f3", PageIndex: 9},
	}

	if err := figures.Associate(figs, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, ch := range chunks {
		total += len(ch.FigureRefs)
	}
	if total != len(figs) {
		t.Errorf("expected %d owned figures, got %d", len(figs), total)
	}
}
