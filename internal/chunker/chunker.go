// Package chunker turns the ordered element sequence of one parsed
// document into token-bounded chunk drafts, preserving reading order and
// covering every element exactly once.
package chunker

import (
	"errors"

	"github.com/quillback/quill/internal/api"
	"github.com/quillback/quill/internal/token"
)

var ErrEmptyDocument = errors.New("document produced no elements")

const textSeparator = "\n\n"

type Config struct {
	// MaxTokens is the chunk token budget. A single element above the
	// budget becomes its own oversized chunk.
	MaxTokens int

	// MinTailTokens is the smallest trailing chunk that may stand alone.
	// A shorter tail is merged into the previous chunk.
	MinTailTokens int

	// HeadingSplitFraction is the fill level at which a heading forces a
	// split even though capacity remains, to avoid straddling sections.
	HeadingSplitFraction float64
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:            512,
		MinTailTokens:        64,
		HeadingSplitFraction: 0.5,
	}
}

type Chunker struct {
	cfg Config
}

func New(cfg Config) *Chunker {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.HeadingSplitFraction <= 0 || cfg.HeadingSplitFraction > 1 {
		cfg.HeadingSplitFraction = DefaultConfig().HeadingSplitFraction
	}
	return &Chunker{cfg: cfg}
}

// Chunk greedily accumulates consecutive elements into drafts. Headings
// are preferred split points once the buffer holds at least
// HeadingSplitFraction of the budget. Elements larger than the budget
// pass through whole as oversized drafts, never truncated.
func (c *Chunker) Chunk(elements []api.DocElement) ([]api.ChunkDraft, error) {
	if len(elements) == 0 {
		return nil, ErrEmptyDocument
	}

	var drafts []api.ChunkDraft
	var buf []api.DocElement
	bufTokens := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		drafts = append(drafts, draftFrom(buf, bufTokens, false))
		buf = nil
		bufTokens = 0
	}

	headingThreshold := int(c.cfg.HeadingSplitFraction * float64(c.cfg.MaxTokens))

	for _, el := range elements {
		n := token.Count(el.Text)

		if n > c.cfg.MaxTokens {
			flush()
			drafts = append(drafts, draftFrom([]api.DocElement{el}, n, true))
			continue
		}

		if el.Kind == api.ElementHeading && bufTokens >= headingThreshold {
			flush()
		}

		if bufTokens+n > c.cfg.MaxTokens {
			flush()
		}

		buf = append(buf, el)
		bufTokens += n
	}

	if len(buf) > 0 {
		last := len(drafts) - 1
		// A short tail is merged backwards, except into an oversized
		// draft: those must keep corresponding to exactly one element.
		if bufTokens < c.cfg.MinTailTokens && last >= 0 && !drafts[last].Oversized {
			tail := draftFrom(buf, bufTokens, false)
			drafts[last].Text += textSeparator + tail.Text
			drafts[last].TokenCount += tail.TokenCount
			if tail.PageEnd > drafts[last].PageEnd {
				drafts[last].PageEnd = tail.PageEnd
			}
		} else {
			flush()
		}
	}

	return drafts, nil
}

func draftFrom(elements []api.DocElement, tokens int, oversized bool) api.ChunkDraft {
	d := api.ChunkDraft{
		TokenCount: tokens,
		PageStart:  elements[0].PageIndex,
		PageEnd:    elements[0].PageIndex,
		Oversized:  oversized,
	}
	for i, el := range elements {
		if i > 0 {
			d.Text += textSeparator
		}
		d.Text += el.Text
		if el.PageIndex < d.PageStart {
			d.PageStart = el.PageIndex
		}
		if el.PageIndex > d.PageEnd {
			d.PageEnd = el.PageIndex
		}
	}
	return d
}
