package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingClientInterface turns free text into vectors comparable with the
// destination_embeddings table.
type EmbeddingClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Close() error
}

// NewEmbeddingClient Factory function to create an OpenAI, Gemini or local hash client based on config
func NewEmbeddingClient(provider, apiKey, model string) (EmbeddingClientInterface, error) {
	switch strings.ToLower(provider) {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when using OpenAI provider")
		}
		return NewOpenAIEmbeddingClient(apiKey, model), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when using Gemini provider")
		}
		client, err := NewGeminiEmbeddingClient(apiKey, model)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "local":
		return NewHashEmbeddingClient(0), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
