package utils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"
)

// GeminiEmbeddingClient implements EmbeddingClientInterface using Google's embedding models
type GeminiEmbeddingClient struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbeddingClient creates a new Gemini client
func NewGeminiEmbeddingClient(apiKey, model string) (*GeminiEmbeddingClient, error) {
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEmbeddingClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	em := c.client.EmbeddingModel(c.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("gemini embed: %w", err)
	}
	if res.Embedding == nil {
		return pgvector.Vector{}, fmt.Errorf("gemini embed: empty embedding")
	}
	return pgvector.NewVector(res.Embedding.Values), nil
}

// GetEmbeddings batch processes multiple texts
func (c *GeminiEmbeddingClient) GetEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no input texts provided")
	}

	em := c.client.EmbeddingModel(c.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini batch embed: expected %d vectors, got %d", len(texts), len(res.Embeddings))
	}

	vectors := make([]pgvector.Vector, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = pgvector.NewVector(e.Values)
	}
	return vectors, nil
}

// Close closes the Gemini client
func (c *GeminiEmbeddingClient) Close() error {
	return c.client.Close()
}

// HashEmbeddingClient is an offline embedding based on word hashing.
// It is deterministic, which makes it usable in development and tests.
type HashEmbeddingClient struct {
	dimensions int
}

func NewHashEmbeddingClient(dimensions int) *HashEmbeddingClient {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &HashEmbeddingClient{dimensions: dimensions}
}

func (c *HashEmbeddingClient) GetEmbedding(_ context.Context, text string) (pgvector.Vector, error) {
	return c.textToVector(text), nil
}

func (c *HashEmbeddingClient) GetEmbeddings(_ context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no input texts provided")
	}
	vectors := make([]pgvector.Vector, len(texts))
	for i, text := range texts {
		vectors[i] = c.textToVector(text)
	}
	return vectors, nil
}

func (c *HashEmbeddingClient) Close() error { return nil }

// textToVector spreads the hash of every word across all dimensions, then normalizes.
func (c *HashEmbeddingClient) textToVector(text string) pgvector.Vector {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	vector := make([]float32, c.dimensions)

	for _, word := range words {
		hash := hashWord(word)
		for i := 0; i < c.dimensions; i++ {
			vector[i] += float32(math.Sin(float64(hash+uint32(i))) * 0.1)
		}
	}

	var magnitude float64
	for _, val := range vector {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / magnitude)
		}
	}

	return pgvector.NewVector(vector)
}

func hashWord(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}

// CosineSimilarity returns the cosine of the angle between two vectors, 0 when either is empty
// or the dimensions differ.
func CosineSimilarity(a, b pgvector.Vector) float64 {
	av, bv := a.Slice(), b.Slice()
	if len(av) == 0 || len(av) != len(bv) {
		return 0
	}
	var dot, na, nb float64
	for i := range av {
		dot += float64(av[i]) * float64(bv[i])
		na += float64(av[i]) * float64(av[i])
		nb += float64(bv[i]) * float64(bv[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
