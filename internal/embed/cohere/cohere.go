package cohere

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	cohereai "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const embedModel = "embed-multilingual-v3.0"

type Provider struct {
	client *cohereclient.Client
}

func New() *Provider {
	c := cohereclient.NewClient(
		cohereclient.WithToken(os.Getenv("COHERE_API_KEY")),
		cohereclient.WithHTTPClient(
			&http.Client{
				Timeout: 60 * time.Second,
			},
		),
	)
	return &Provider{
		client: c,
	}
}

func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.V2.Embed(
		ctx,
		&cohereai.V2EmbedRequest{
			Texts:          texts,
			Model:          embedModel,
			InputType:      cohereai.EmbedInputTypeSearchDocument,
			EmbeddingTypes: []cohereai.EmbeddingType{cohereai.EmbeddingTypeFloat},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}

	vectors := make([][]float32, 0, len(resp.Embeddings.Float))
	for _, cohereVector := range resp.Embeddings.Float {
		vector := make([]float32, 0, len(cohereVector))
		for _, f64 := range cohereVector {
			vector = append(vector, float32(f64))
		}
		vectors = append(vectors, vector)
	}

	return vectors, nil
}

// Dimensions is fixed by the embed-multilingual-v3.0 model.
func (p *Provider) Dimensions() uint {
	return 1024
}
