// Package embed computes contextual embeddings: all chunks of one
// document are submitted to the backend in ordered batches so each
// vector is conditioned on its neighbours.
package embed

import (
	"context"
	"errors"
)

var ErrInvalidProviderType = errors.New("no embedding provider found for given name")

// Provider is a single embedding backend call surface. EmbedBatch must
// return exactly one vector per input text, in input order.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() uint
}
