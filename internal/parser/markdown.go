package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/quillback/quill/internal/api"
)

// imagePattern matches markdown image syntax; the caption is the alt
// text, the ref is the link target.
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)

// Markdown parses markdown-style documents. Form feed characters mark
// page breaks, blank lines separate blocks. A block is a heading if it
// starts with '#', a table if every line starts with '|', and a text
// paragraph otherwise. Image references become figures and are removed
// from the text flow.
type Markdown struct{}

func NewMarkdown() *Markdown {
	return &Markdown{}
}

func (m *Markdown) Strategy() string {
	return "markdown"
}

func (m *Markdown) Parse(ctx context.Context, name string, data []byte) (*api.Parsed, error) {
	parsed := &api.Parsed{}

	for pageIdx, page := range splitPages(data) {
		for _, block := range splitBlocks(page) {
			for _, match := range imagePattern.FindAllStringSubmatch(block, -1) {
				parsed.Figures = append(parsed.Figures, api.ParsedFigure{
					PageIndex: pageIdx,
					Caption:   strings.TrimSpace(match[1]),
					Ref:       match[2],
				})
			}

			text := strings.TrimSpace(imagePattern.ReplaceAllString(block, ""))
			if text == "" {
				continue
			}

			el := api.DocElement{Kind: api.ElementText, Text: text, PageIndex: pageIdx}
			switch {
			case strings.HasPrefix(text, "#"):
				el.Kind = api.ElementHeading
				el.Text = strings.TrimSpace(strings.TrimLeft(text, "#"))
			case isTable(text):
				el.Kind = api.ElementTable
			}
			if el.Text == "" {
				continue
			}
			parsed.Elements = append(parsed.Elements, el)
		}
	}

	return parsed, nil
}

func splitPages(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\f")
}

func splitBlocks(page string) []string {
	var blocks []string
	for _, block := range strings.Split(page, "\n\n") {
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func isTable(block string) bool {
	for line := range strings.Lines(block) {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "|") {
			return false
		}
	}
	return true
}
