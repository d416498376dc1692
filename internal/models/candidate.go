// Package models defines the request, candidate, and result types shared by the pipeline.
package models

// CandidateRef is the metadata for one recalled image candidate. It is
// immutable once produced by a recall adapter and carried through the
// pipeline by value.
type CandidateRef struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title,omitempty"`
	Source       string `json:"source,omitempty"`
}

// FetchURL returns the URL to download for this candidate: the thumbnail
// when present, otherwise the primary URL. Empty when the candidate has neither.
func (c CandidateRef) FetchURL() string {
	if c.ThumbnailURL != "" {
		return c.ThumbnailURL
	}
	return c.URL
}

// RankedResult is a candidate plus its visual similarity to the query sketch.
// Produced only by the ranker and never mutated afterwards.
type RankedResult struct {
	CandidateRef
	SimilarityScore float64 `json:"similarity_score"`
}
