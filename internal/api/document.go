package api

import "time"

type ElementKind int

const (
	ElementText ElementKind = iota
	ElementTable
	ElementHeading
)

// DocElement is a single unit of parsed document content. Elements are
// produced by a parser in reading order and that order must be preserved
// through the whole pipeline.
type DocElement struct {
	Kind      ElementKind
	Text      string
	PageIndex int
}

// ParsedFigure is a figure or table image extracted by the parser,
// before it has been assigned an identifier or an owner chunk.
type ParsedFigure struct {
	PageIndex int
	Caption   string
	Image     []byte
	Ref       string
}

// Parsed holds everything a parser produces for one document.
type Parsed struct {
	Elements []DocElement
	Figures  []ParsedFigure
}

type SourceType string

const (
	SourceSharepoint SourceType = "sharepoint"
	SourceBlob       SourceType = "blob"
)

// SourceFile carries the raw bytes of one document together with where
// they came from.
type SourceFile struct {
	Name string
	Type SourceType
	Data []byte
}

// Document is the per-ingestion-run record for one source file. A new
// run for the same source file supersedes the previous record, it is
// never merged with it.
type Document struct {
	ID          string
	SourceFile  string
	SourceType  SourceType
	Strategy    string
	IngestedAt  time.Time
	ChunkCount  int
	FigureCount int
}
