package chunker_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/chunker"
	"github.com/quillback/quill/internal/token"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func element(kind api.ElementKind, tokens int, page int) api.DocElement {
	return api.DocElement{Kind: kind, Text: words(tokens), PageIndex: page}
}

func TestChunkEmptyDocument(t *testing.T) {
	c := chunker.New(chunker.DefaultConfig())

	_, err := c.Chunk(nil)
	if !errors.Is(err, chunker.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestChunkOversizedTable(t *testing.T) {
	// Two 300-token paragraphs and one 1200-token table under a budget
	// of 500: the paragraphs cannot share a chunk and the table passes
	// through whole, flagged oversized.
	c := chunker.New(chunker.Config{MaxTokens: 500, MinTailTokens: 50, HeadingSplitFraction: 0.5})

	elements := []api.DocElement{
		element(api.ElementText, 300, 0),
		element(api.ElementText, 300, 1),
		element(api.ElementTable, 1200, 2),
	}

	drafts, err := c.Chunk(elements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}

	for i, expected := range []int{300, 300, 1200} {
		if drafts[i].TokenCount != expected {
			t.Errorf("draft %d token count %d, expected %d", i, drafts[i].TokenCount, expected)
		}
	}

	if drafts[0].Oversized || drafts[1].Oversized {
		t.Error("paragraph drafts must not be flagged oversized")
	}
	if !drafts[2].Oversized {
		t.Error("table draft must be flagged oversized")
	}
	if drafts[2].PageStart != 2 || drafts[2].PageEnd != 2 {
		t.Errorf("table draft page range [%d,%d], expected [2,2]", drafts[2].PageStart, drafts[2].PageEnd)
	}
}

func TestChunkCoversEveryElementOnce(t *testing.T) {
	c := chunker.New(chunker.Config{MaxTokens: 100, MinTailTokens: 10, HeadingSplitFraction: 0.5})

	elements := make([]api.DocElement, 0, 12)
	total := 0
	for i := range 12 {
		n := 20 + i
		elements = append(elements, element(api.ElementText, n, i/4))
		total += n
	}

	drafts, err := c.Chunk(elements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := 0
	for _, d := range drafts {
		sum += d.TokenCount
		if got := token.Count(d.Text); got != d.TokenCount {
			t.Errorf("draft token count %d does not match its text (%d)", d.TokenCount, got)
		}
		if !d.Oversized && d.TokenCount > 100 {
			t.Errorf("draft exceeds budget without oversized flag: %d tokens", d.TokenCount)
		}
	}
	if sum != total {
		t.Errorf("drafts cover %d tokens, input had %d", sum, total)
	}
}

func TestChunkHeadingForcesSplit(t *testing.T) {
	c := chunker.New(chunker.Config{MaxTokens: 100, MinTailTokens: 10, HeadingSplitFraction: 0.5})

	elements := []api.DocElement{
		element(api.ElementText, 60, 0),
		element(api.ElementHeading, 5, 0),
		element(api.ElementText, 60, 0),
	}

	drafts, err := c.Chunk(elements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected heading to force a split into 2 drafts, got %d", len(drafts))
	}
	if drafts[0].TokenCount != 60 {
		t.Errorf("first draft holds %d tokens, expected 60", drafts[0].TokenCount)
	}
	if drafts[1].TokenCount != 65 {
		t.Errorf("second draft holds %d tokens, expected heading plus text (65)", drafts[1].TokenCount)
	}
}

func TestChunkHeadingBelowThresholdKeepsAccumulating(t *testing.T) {
	c := chunker.New(chunker.Config{MaxTokens: 100, MinTailTokens: 10, HeadingSplitFraction: 0.5})

	elements := []api.DocElement{
		element(api.ElementText, 20, 0),
		element(api.ElementHeading, 5, 0),
		element(api.ElementText, 20, 0),
	}

	drafts, err := c.Chunk(elements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected a single draft, got %d", len(drafts))
	}
}

func TestChunkShortTailMerges(t *testing.T) {
	c := chunker.New(chunker.Config{MaxTokens: 100, MinTailTokens: 20, HeadingSplitFraction: 0.5})

	elements := []api.DocElement{
		element(api.ElementText, 90, 0),
		element(api.ElementText, 15, 1),
	}

	drafts, err := c.Chunk(elements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected short tail to merge into previous draft, got %d drafts", len(drafts))
	}
	if drafts[0].TokenCount != 105 {
		t.Errorf("merged draft holds %d tokens, expected 105", drafts[0].TokenCount)
	}
	if drafts[0].PageEnd != 1 {
		t.Errorf("merged draft page end %d, expected 1", drafts[0].PageEnd)
	}
}

func TestChunkOnlyChunkStandsAlone(t *testing.T) {
	c := chunker.New(chunker.Config{MaxTokens: 100, MinTailTokens: 20, HeadingSplitFraction: 0.5})

	drafts, err := c.Chunk([]api.DocElement{element(api.ElementText, 5, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 1 || drafts[0].TokenCount != 5 {
		t.Fatalf("expected the document's only chunk to be emitted as-is, got %+v", drafts)
	}
}

func TestChunkTailNotMergedIntoOversized(t *testing.T) {
	c := chunker.New(chunker.Config{MaxTokens: 100, MinTailTokens: 20, HeadingSplitFraction: 0.5})

	elements := []api.DocElement{
		element(api.ElementTable, 150, 0),
		element(api.ElementText, 10, 0),
	}

	drafts, err := c.Chunk(elements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if !drafts[0].Oversized || drafts[0].TokenCount != 150 {
		t.Errorf("oversized draft changed by tail merge: %+v", drafts[0])
	}
}
