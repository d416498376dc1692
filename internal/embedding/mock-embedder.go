package embedding

import (
	"context"
	"image"
	"math"
)

// MockEmbedder is a deterministic embedder for tests and the "mock" backend.
// The same image pixels (or the same text) always produce the same unit-norm
// vector, so similarity comparisons are stable across runs.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder producing deterministic embeddings of
// the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &MockEmbedder{dimensions: dimensions}
}

// EmbedImage returns a deterministic embedding derived from the image digest.
func (e *MockEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	return e.fromSeed(HashString(SketchDigest(img))), nil
}

// EmbedTexts returns one deterministic embedding per text.
func (e *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.fromSeed(HashString(text))
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

func (e *MockEmbedder) fromSeed(seed int) []float32 {
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(seed*(i+1)))*0.1 + 0.01)
	}
	// Normalize to unit length for cosine similarity
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb
}
