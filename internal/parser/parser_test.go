package parser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/parser"
)

func TestNewParser(t *testing.T) {
	p, err := parser.NewParser("markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Strategy() != "markdown" {
		t.Errorf("expected strategy 'markdown', got %q", p.Strategy())
	}

	if _, err := parser.NewParser("docx"); !errors.Is(err, parser.ErrInvalidParserType) {
		t.Errorf("expected ErrInvalidParserType, got %v", err)
	}
}

func TestMarkdownClassifiesBlocks(t *testing.T) {
	doc := "# Overview\n\nplain paragraph text\n\n| a | b |\n| 1 | 2 |\n"

	parsed, err := parser.NewMarkdown().Parse(context.Background(), "doc.md", []byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(parsed.Elements))
	}

	want := []struct {
		kind api.ElementKind
		text string
	}{
		{api.ElementHeading, "Overview"},
		{api.ElementText, "plain paragraph text"},
		{api.ElementTable, "| a | b |\n| 1 | 2 |"},
	}
	for i, w := range want {
		if parsed.Elements[i].Kind != w.kind {
			t.Errorf("element %d: expected kind %v, got %v", i, w.kind, parsed.Elements[i].Kind)
		}
		if parsed.Elements[i].Text != w.text {
			t.Errorf("element %d: expected text %q, got %q", i, w.text, parsed.Elements[i].Text)
		}
	}
}

func TestMarkdownPageBreaks(t *testing.T) {
	doc := "page one text\n\f\npage two text"

	parsed, err := parser.NewMarkdown().Parse(context.Background(), "doc.md", []byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(parsed.Elements))
	}
	if parsed.Elements[0].PageIndex != 0 || parsed.Elements[1].PageIndex != 1 {
		t.Errorf("expected page indices 0 and 1, got %d and %d",
			parsed.Elements[0].PageIndex, parsed.Elements[1].PageIndex)
	}
}

func TestMarkdownExtractsFigures(t *testing.T) {
	doc := "intro text\n\n![latency chart](charts/latency.png)\n\f\n![](raw.png)\n\nclosing text"

	parsed, err := parser.NewMarkdown().Parse(context.Background(), "doc.md", []byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(parsed.Figures) != 2 {
		t.Fatalf("expected 2 figures, got %d", len(parsed.Figures))
	}
	first := parsed.Figures[0]
	if first.Caption != "latency chart" || first.Ref != "charts/latency.png" || first.PageIndex != 0 {
		t.Errorf("unexpected first figure: %+v", first)
	}
	if parsed.Figures[1].Caption != "" || parsed.Figures[1].PageIndex != 1 {
		t.Errorf("unexpected second figure: %+v", parsed.Figures[1])
	}

	// image syntax must not leak into the text flow
	for _, el := range parsed.Elements {
		if el.Text == "" {
			t.Error("figure-only blocks must not produce empty elements")
		}
	}
	if len(parsed.Elements) != 2 {
		t.Errorf("expected 2 text elements, got %d", len(parsed.Elements))
	}
}

func TestTextParserParagraphs(t *testing.T) {
	doc := "first paragraph\n\nsecond paragraph\n\f\nthird on page two"

	parsed, err := parser.NewText().Parse(context.Background(), "notes.txt", []byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(parsed.Elements))
	}
	for i, el := range parsed.Elements {
		if el.Kind != api.ElementText {
			t.Errorf("element %d: text parser must only emit text elements", i)
		}
	}
	if parsed.Elements[2].PageIndex != 1 {
		t.Errorf("expected third paragraph on page 1, got %d", parsed.Elements[2].PageIndex)
	}
}
