package pipeline

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
)

// Identifier namespaces. Ids are UUIDv5 values derived from content, so
// re-ingesting unchanged input always re-derives the same id and the
// vector store can accept them directly as point ids.
var (
	nsDocument = uuid.MustParse("9f2c1af0-5b11-4aa6-93d3-1e07c0f4c1a1")
	nsChunk    = uuid.MustParse("b4a6d2c8-7e39-4f02-8d55-92ab6f0d63be")
	nsFigure   = uuid.MustParse("c81e0bd4-2d68-49c7-b6f4-30a4de2f1c57")
)

// DocumentID derives a stable document id from the source file path.
// The id survives content edits, so a re-ingested file replaces its
// earlier chunk set instead of accumulating a second one.
func DocumentID(sourceFile string) string {
	sum := sha256.Sum256([]byte(sourceFile))
	return uuid.NewSHA1(nsDocument, fmt.Appendf(nil, "%x", sum)).String()
}

// ChunkID derives a stable chunk id from its document, position and
// text. An edit to one chunk's text changes only that chunk's id.
func ChunkID(docID string, index int, text string) string {
	sum := sha256.Sum256([]byte(text))
	return uuid.NewSHA1(nsChunk, fmt.Appendf(nil, "%s/%d/%x", docID, index, sum)).String()
}

// FigureID derives a stable figure id from its document, page and
// per-page sequence index.
func FigureID(docID string, pageIndex int, seq int) string {
	return uuid.NewSHA1(nsFigure, fmt.Appendf(nil, "%s/%d/%d", docID, pageIndex, seq)).String()
}
