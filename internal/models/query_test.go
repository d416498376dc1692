package models

import (
	"image"
	"testing"
)

func TestSketchQuery_Validate(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	q := &SketchQuery{Sketch: img}
	if err := q.Validate(20, 50); err != nil {
		t.Fatal(err)
	}
	if q.MaxResults != 20 {
		t.Errorf("MaxResults = %d, want default 20", q.MaxResults)
	}

	q = &SketchQuery{Sketch: img, MaxResults: 500}
	if err := q.Validate(20, 50); err != nil {
		t.Fatal(err)
	}
	if q.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want clamped 50", q.MaxResults)
	}

	q = &SketchQuery{}
	if err := q.Validate(20, 50); err == nil {
		t.Error("expected error for missing sketch")
	}
}

func TestCandidateRef_FetchURL(t *testing.T) {
	tests := []struct {
		name string
		ref  CandidateRef
		want string
	}{
		{"prefers thumbnail", CandidateRef{URL: "https://a/full.jpg", ThumbnailURL: "https://a/thumb.jpg"}, "https://a/thumb.jpg"},
		{"falls back to url", CandidateRef{URL: "https://a/full.jpg"}, "https://a/full.jpg"},
		{"neither", CandidateRef{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.FetchURL(); got != tt.want {
				t.Errorf("FetchURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
