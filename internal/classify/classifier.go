package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/embedding"
	"github.com/itisrohit/Outlyne/pkg/utils"
)

// Classifier maps a sketch embedding to the nearest label in the vocabulary
// by dot product against the label's text embedding. Label embeddings are
// recomputed per call; the label set is small and the text tower is cheap
// relative to the rest of the pipeline.
type Classifier struct {
	embedder embedding.Embedder
	vocab    *Vocabulary
	logger   *zap.Logger
}

// NewClassifier creates a zero-shot classifier over vocab.
func NewClassifier(embedder embedding.Embedder, vocab *Vocabulary, logger *zap.Logger) *Classifier {
	return &Classifier{embedder: embedder, vocab: vocab, logger: logger}
}

// Classify returns the vocabulary label whose text embedding is closest to
// sketchEmbedding. Strict argmax; an exact tie resolves to the earliest
// label in vocabulary order.
func (c *Classifier) Classify(ctx context.Context, sketchEmbedding []float32) (string, error) {
	labels := c.vocab.Labels()
	if len(labels) == 0 {
		return "", fmt.Errorf("empty classification vocabulary")
	}

	labelVectors, err := c.embedder.EmbedTexts(ctx, labels)
	if err != nil {
		return "", fmt.Errorf("embed vocabulary labels: %w", err)
	}
	if len(labelVectors) != len(labels) {
		return "", fmt.Errorf("embedder returned %d vectors for %d labels", len(labelVectors), len(labels))
	}

	best := 0
	bestScore := utils.InnerProduct(sketchEmbedding, labelVectors[0])
	for i := 1; i < len(labels); i++ {
		score := utils.InnerProduct(sketchEmbedding, labelVectors[i])
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	c.logger.Debug("zero-shot classification",
		zap.String("label", labels[best]), zap.Float64("score", bestScore))
	return labels[best], nil
}
