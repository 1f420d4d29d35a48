package service

import (
	"context"
	"fmt"
	"math"

	"github.com/cloo-solutions/deckray/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingService maps text to a fixed-dimension unit-normalized vector.
// Normalization happens here, once, so every vector entering the store or
// a query is comparable under cosine distance.
type EmbeddingService struct {
	client EmbeddingClient
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient) *EmbeddingService {
	return &EmbeddingService{client: client}
}

// EmbedText returns the unit-normalized embedding of the given text.
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(embedding) != domain.EmbeddingDimensions {
		return nil, fmt.Errorf("expected %d dimensions, got %d", domain.EmbeddingDimensions, len(embedding))
	}

	return normalize(embedding), nil
}

// normalize scales a vector to unit length. Zero vectors are returned as-is.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
