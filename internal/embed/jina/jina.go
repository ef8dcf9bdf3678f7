package jina

import (
	"context"
	"errors"
	"os"

	httpx "github.com/quillback/quill/internal/http"
)

const Endpoint = "https://api.jina.ai"

type embeddingResponse struct {
	Model     string `json:"model"`
	UsageInfo struct {
		TotalTokens  int `json:"total_tokens"`
		PromptTokens int `json:"prompt_tokens"`
	} `json:"usage"`
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type Provider struct {
	client     httpx.Client
	vectorDims uint
}

func New(dims uint) *Provider {
	if dims == 0 {
		dims = 1024
	}
	c := httpx.NewClient(
		Endpoint,
		httpx.WithApiKey(os.Getenv("JINA_API_KEY")),
	)
	return &Provider{
		client:     c,
		vectorDims: dims,
	}
}

func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	requestData := map[string]any{
		"input":      texts,
		"model":      "jina-embeddings-v3",
		"task":       "retrieval.passage",
		"dimensions": p.vectorDims,
	}

	var resp embeddingResponse
	if err := p.client.PostJSON(ctx, "/v1/embeddings", requestData, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("failed to deserialize embeddings")
	}

	vals := make([][]float32, len(resp.Data))
	for _, e := range resp.Data {
		vals[e.Index] = e.Embedding
	}

	return vals, nil
}

func (p *Provider) Dimensions() uint {
	return p.vectorDims
}
