package embedding

import (
	"context"
	"encoding/json"
	"image"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itisrohit/Outlyne/pkg/utils"
)

func TestRemoteEmbedder_EmbedImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/image" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req embedImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.ImageBase64 == "" {
			t.Error("expected base64 image payload")
		}
		json.NewEncoder(w).Encode(embedImageResponse{Vector: []float32{3, 4, 0}})
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, 3, time.Second)
	vec, err := e.EmbedImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(utils.L2Norm(vec)-1.0) > 1e-6 {
		t.Errorf("vector not normalized: norm = %v", utils.L2Norm(vec))
	}
}

func TestRemoteEmbedder_EmbedTexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		vecs := make([][]float32, len(req.Texts))
		for i := range req.Texts {
			vecs[i] = []float32{1, 0, 0}
		}
		json.NewEncoder(w).Encode(embedTextResponse{Vectors: vecs})
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, 3, time.Second)
	vecs, err := e.EmbedTexts(context.Background(), []string{"chair", "shoes"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
}

func TestRemoteEmbedder_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedImageResponse{Vector: []float32{1, 2}})
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, 768, time.Second)
	if _, err := e.EmbedImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestRemoteEmbedder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewRemoteEmbedder(srv.URL, 3, time.Second)
	if _, err := e.EmbedImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("expected error on 500 response")
	}
}
