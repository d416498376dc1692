// Package recall retrieves candidate image metadata from external
// text-query-driven search backends.
package recall

import (
	"context"

	"github.com/itisrohit/Outlyne/internal/models"
)

// SearchAdapter is the capability contract for a candidate recall backend.
// Implementations return an empty slice (not an error) when the backend has
// no results; errors indicate transport failure.
type SearchAdapter interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.CandidateRef, error)
}
