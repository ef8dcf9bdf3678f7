package gemini

import (
	"context"
	"os"

	"google.golang.org/genai"
)

const embedModel = "gemini-embedding-exp-03-07"

type Provider struct {
	client     *genai.Client
	vectorDims *int32
}

func New(dims uint) (*Provider, error) {
	c, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	if dims == 0 {
		dims = 1536
	}
	p := &Provider{
		client:     c,
		vectorDims: new(int32),
	}
	*(p.vectorDims) = int32(dims)
	return p, nil
}

func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	config := &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: p.vectorDims,
	}

	res, err := p.client.Models.EmbedContent(ctx, embedModel, contents, config)
	if err != nil {
		return nil, err
	}

	values := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		values = append(values, e.Values)
	}

	return values, nil
}

func (p *Provider) Dimensions() uint {
	return uint(*p.vectorDims)
}
