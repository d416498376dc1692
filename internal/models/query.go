package models

import (
	"fmt"
	"image"
)

// SketchQuery represents one sketch-to-image search request after the HTTP
// layer has decoded the sketch payload.
type SketchQuery struct {
	// Sketch is the decoded sketch image.
	Sketch image.Image
	// Text is the optional recall hint. When empty, the zero-shot
	// classifier derives a query label from the sketch embedding.
	Text string
	// MaxResults caps the returned result count.
	MaxResults int
}

// Validate checks required fields and normalizes MaxResults against the
// given defaults. Returns an error when no sketch is present.
func (q *SketchQuery) Validate(defaultLimit, maxLimit int) error {
	if q.Sketch == nil {
		return fmt.Errorf("sketch image is required")
	}
	if q.MaxResults <= 0 {
		q.MaxResults = defaultLimit
	}
	if q.MaxResults > maxLimit {
		q.MaxResults = maxLimit
	}
	return nil
}

// SearchResponse is the response for one sketch search.
type SearchResponse struct {
	// Query is the recall query that was actually used (the caller's text
	// hint, or the zero-shot label when no hint was given).
	Query string `json:"query"`
	// Results are ordered by descending similarity score.
	Results []RankedResult `json:"results"`
	Count   int            `json:"count"`
	// QueryTime is the end-to-end pipeline time in milliseconds.
	QueryTime int64 `json:"query_time_ms"`
}
