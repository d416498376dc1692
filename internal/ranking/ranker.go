// Package ranking orders candidates by visual similarity to the query sketch.
package ranking

import (
	"errors"
	"sort"

	"github.com/itisrohit/Outlyne/internal/models"
	"github.com/itisrohit/Outlyne/pkg/utils"
)

// ErrMismatch reports a candidate vector/metadata count mismatch. It
// indicates a pipeline bug upstream, not a recoverable input condition.
var ErrMismatch = errors.New("embedding and metadata counts differ")

// Rank scores every candidate against the query embedding and returns the
// full candidate set ordered by descending similarity. Both the query and
// every candidate vector must be L2-normalized, so the dot product equals
// cosine similarity. Equal scores keep their relative input order. Empty
// input returns an empty slice. Truncation is the caller's concern.
func Rank(query []float32, candidates [][]float32, metadata []models.CandidateRef) ([]models.RankedResult, error) {
	if len(candidates) != len(metadata) {
		return nil, ErrMismatch
	}
	if len(candidates) == 0 {
		return []models.RankedResult{}, nil
	}

	results := make([]models.RankedResult, len(candidates))
	for i, vec := range candidates {
		results[i] = models.RankedResult{
			CandidateRef:    metadata[i],
			SimilarityScore: utils.InnerProduct(query, vec),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	return results, nil
}
