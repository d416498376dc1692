// Package encode turns fetched thumbnail bytes into candidate embeddings.
package encode

import (
	"bytes"
	"context"
	"image"

	// Image decoders registered for image.Decode. Web thumbnails are
	// overwhelmingly jpeg/png/webp with the occasional gif or bmp.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/embedding"
	"github.com/itisrohit/Outlyne/internal/fetch"
	"github.com/itisrohit/Outlyne/internal/models"
)

// Encoder decodes fetched candidate bytes and embeds them with the shared
// embedding model. Per-candidate decode or model failures are logged and
// dropped; they never fail the batch.
type Encoder struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewEncoder creates an encoder using the given embedder.
func NewEncoder(embedder embedding.Embedder, logger *zap.Logger) *Encoder {
	return &Encoder{embedder: embedder, logger: logger}
}

// EncodeAll embeds every fetched candidate that carries decodable bytes.
// It returns parallel slices of equal length: one embedding and one
// CandidateRef per successfully encoded candidate, preserving input order.
func (e *Encoder) EncodeAll(ctx context.Context, fetched []fetch.Result) ([][]float32, []models.CandidateRef) {
	vectors := make([][]float32, 0, len(fetched))
	refs := make([]models.CandidateRef, 0, len(fetched))

	for _, item := range fetched {
		if item.Data == nil {
			continue
		}
		img, format, err := image.Decode(bytes.NewReader(item.Data))
		if err != nil {
			e.logger.Debug("failed to decode candidate image",
				zap.String("url", item.Ref.FetchURL()), zap.Error(err))
			continue
		}
		vec, err := e.embedder.EmbedImage(ctx, img)
		if err != nil {
			e.logger.Debug("failed to encode candidate image",
				zap.String("url", item.Ref.FetchURL()), zap.String("format", format), zap.Error(err))
			continue
		}
		vectors = append(vectors, vec)
		refs = append(refs, item.Ref)
	}

	return vectors, refs
}
