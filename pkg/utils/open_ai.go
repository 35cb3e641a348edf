package utils

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

type OpenAIEmbeddingClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbeddingClient(apiKey, model string) *OpenAIEmbeddingClient {
	if model == "" {
		model = string(openai.SmallEmbedding3) // text-embedding-3-small
	}
	return &OpenAIEmbeddingClient{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

func (c *OpenAIEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vectors, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vectors[0], nil
}

func (c *OpenAIEmbeddingClient) GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no input texts provided")
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: expected %d vectors, got %d", len(texts), len(resp.Data))
	}

	out := make([]pgvector.Vector, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = pgvector.NewVector(d.Embedding)
	}
	return out, nil
}

func (c *OpenAIEmbeddingClient) Close() error { return nil }
