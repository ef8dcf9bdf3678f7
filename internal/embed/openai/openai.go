package openai

import (
	"context"
	"os"

	goopenai "github.com/sashabaranov/go-openai"
)

type Provider struct {
	client     *goopenai.Client
	vectorDims int
}

func New(dims uint) *Provider {
	if dims == 0 {
		dims = 1024
	}
	c := goopenai.NewClient(os.Getenv("OPENAI_API_KEY"))
	return &Provider{
		client:     c,
		vectorDims: int(dims),
	}
}

func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := &goopenai.EmbeddingRequestStrings{
		Input:          texts,
		Model:          "text-embedding-3-small",
		EncodingFormat: "float",
		Dimensions:     p.vectorDims,
	}

	res, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}

	vals := make([][]float32, len(res.Data))
	for _, d := range res.Data {
		vals[d.Index] = d.Embedding
	}

	return vals, nil
}

func (p *Provider) Dimensions() uint {
	return uint(p.vectorDims)
}
