package api

// ChunkDraft is the output of structural chunking, before identifiers,
// figure references and embeddings have been attached.
type ChunkDraft struct {
	Text       string
	TokenCount int
	PageStart  int
	PageEnd    int

	// Oversized marks a chunk built from a single atomic element whose
	// own token count exceeds the configured budget. Such chunks are
	// passed through whole, never truncated.
	Oversized bool
}

// Chunk is a bounded, independently embeddable unit of document text.
type Chunk struct {
	ID         string
	DocID      string
	Index      int
	Text       string
	TokenCount int
	PageStart  int
	PageEnd    int
	Oversized  bool
	FigureRefs []string
	Embedding  []float32

	SourceFile string
	Strategy   string
}

// Figure belongs to exactly one Document and is referenced by exactly
// one Chunk through FigureRefs.
type Figure struct {
	ID        string
	DocID     string
	PageIndex int
	Caption   string
	Image     []byte
	Ref       string
}
