package parser

import (
	"context"
	"strings"

	"github.com/quillback/quill/internal/api"
)

// Text parses plain text documents: form feeds mark page breaks, blank
// lines separate paragraphs, every paragraph is a text element. No
// headings, tables or figures are recognized.
type Text struct{}

func NewText() *Text {
	return &Text{}
}

func (t *Text) Strategy() string {
	return "text"
}

func (t *Text) Parse(ctx context.Context, name string, data []byte) (*api.Parsed, error) {
	parsed := &api.Parsed{}

	for pageIdx, page := range splitPages(data) {
		for _, block := range splitBlocks(page) {
			parsed.Elements = append(parsed.Elements, api.DocElement{
				Kind:      api.ElementText,
				Text:      strings.TrimSpace(block),
				PageIndex: pageIdx,
			})
		}
	}

	return parsed, nil
}
