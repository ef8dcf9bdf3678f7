package embed

import (
	"github.com/quillback/quill/internal/embed/cohere"
	"github.com/quillback/quill/internal/embed/gemini"
	"github.com/quillback/quill/internal/embed/jina"
	"github.com/quillback/quill/internal/embed/openai"
)

// NewProvider resolves a configured provider name. dims is the process-wide
// embedding dimension; providers with a fixed model dimension ignore it.
func NewProvider(name string, dims uint) (Provider, error) {
	switch name {
	case "cohere":
		return cohere.New(), nil
	case "openai":
		return openai.New(dims), nil
	case "gemini":
		return gemini.New(dims)
	case "jina":
		return jina.New(dims), nil
	default:
		return nil, ErrInvalidProviderType
	}
}
