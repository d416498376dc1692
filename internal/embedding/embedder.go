// Package embedding provides sketch/image embedding backends, the content
// digest, and the digest-keyed embedding cache.
package embedding

import (
	"context"
	"image"
)

// Embedder produces L2-normalized vector embeddings for images and texts.
// Implementations must return unit-norm vectors; the ranker and classifier
// rely on this to use a plain dot product as cosine similarity.
type Embedder interface {
	// EmbedImage returns the embedding for one image.
	EmbedImage(ctx context.Context, img image.Image) ([]float32, error)
	// EmbedTexts returns one embedding per input string, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
