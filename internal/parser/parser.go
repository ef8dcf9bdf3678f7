// Package parser turns raw source bytes into an ordered stream of
// structural elements and figures. Parsers do not chunk or size
// anything; they only classify structure and preserve reading order.
package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillback/quill/internal/api"
)

var ErrInvalidParserType = errors.New("invalid parser type")

type Parser interface {
	// Parse extracts elements and figures from data, both in reading
	// order. Page indices are zero-based.
	Parse(ctx context.Context, name string, data []byte) (*api.Parsed, error)

	// Strategy names the parsing strategy, recorded on every chunk the
	// document produces.
	Strategy() string
}

type parserInitializer func() Parser

var parserTypeMap = map[string]parserInitializer{
	"markdown": func() Parser { return NewMarkdown() },
	"text":     func() Parser { return NewText() },
}

func NewParser(name string) (Parser, error) {
	init, ok := parserTypeMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidParserType, name)
	}
	return init(), nil
}
