// Package figures assigns extracted figures to chunks. Every figure ends
// up referenced by exactly one chunk, never zero, never many.
package figures

import (
	"errors"
	"strings"

	"github.com/quillback/quill/internal/api"
)

var ErrNoChunks = errors.New("cannot associate figures without chunks")

// Associate attaches each figure to its owner chunk by appending the
// figure id to the chunk's FigureRefs. Chunks must be in reading order.
//
// A figure goes to the chunk whose page range contains its page. When a
// page was split across chunks, the chunk sharing the most caption words
// wins, falling back to the first chunk on that page. A figure on a page
// no chunk covers attaches to the nearest preceding chunk, or the
// nearest following one when nothing precedes it.
func Associate(figs []*api.Figure, chunks []*api.Chunk) error {
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	for _, fig := range figs {
		owner := ownerFor(fig, chunks)
		owner.FigureRefs = append(owner.FigureRefs, fig.ID)
	}
	return nil
}

func ownerFor(fig *api.Figure, chunks []*api.Chunk) *api.Chunk {
	var candidates []*api.Chunk
	for _, ch := range chunks {
		if ch.PageStart <= fig.PageIndex && fig.PageIndex <= ch.PageEnd {
			candidates = append(candidates, ch)
		}
	}

	switch len(candidates) {
	case 0:
		return nearestChunk(fig.PageIndex, chunks)
	case 1:
		return candidates[0]
	default:
		return bestCaptionMatch(fig.Caption, candidates)
	}
}

// bestCaptionMatch picks the candidate sharing the most caption words,
// keeping the earliest candidate on a tie.
func bestCaptionMatch(caption string, candidates []*api.Chunk) *api.Chunk {
	best := candidates[0]
	bestScore := 0

	fields := strings.Fields(strings.ToLower(caption))
	if len(fields) == 0 {
		return best
	}

	for _, ch := range candidates {
		text := strings.ToLower(ch.Text)
		score := 0
		for _, f := range fields {
			if strings.Contains(text, f) {
				score++
			}
		}
		if score > bestScore {
			best = ch
			bestScore = score
		}
	}
	return best
}

func nearestChunk(page int, chunks []*api.Chunk) *api.Chunk {
	var preceding *api.Chunk
	for _, ch := range chunks {
		if ch.PageEnd < page {
			preceding = ch
		}
	}
	if preceding != nil {
		return preceding
	}

	for _, ch := range chunks {
		if ch.PageStart > page {
			return ch
		}
	}
	return chunks[0]
}
