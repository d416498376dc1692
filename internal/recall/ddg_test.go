package recall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/config"
)

func newTestAdapter(t *testing.T, handler http.Handler) (*DuckDuckGoAdapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.RecallConfig{TimeoutSeconds: 2, RequestsPerSec: 1000, SafeSearch: "moderate", Region: "wt-wt"}
	a := NewDuckDuckGoAdapter(cfg, zap.NewNop())
	a.baseURL = srv.URL
	return a, srv
}

func ddgHandler(t *testing.T, results []ddgImageResult) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<script>vqd="4-123456789";</script>`))
	})
	mux.HandleFunc("/i.js", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vqd") != "4-123456789" {
			t.Errorf("missing vqd token: %q", r.URL.Query().Get("vqd"))
		}
		json.NewEncoder(w).Encode(ddgImageResponse{Results: results})
	})
	return mux
}

func TestDuckDuckGoAdapter_Search(t *testing.T) {
	a, _ := newTestAdapter(t, ddgHandler(t, []ddgImageResult{
		{Image: "https://img/a.jpg", Thumbnail: "https://img/a_t.jpg", Title: "a chair"},
		{Image: "https://img/b.jpg", Thumbnail: "https://img/b_t.jpg", Title: "b chair"},
	}))

	refs, err := a.Search(context.Background(), "chair", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	if refs[0].URL != "https://img/a.jpg" || refs[0].ThumbnailURL != "https://img/a_t.jpg" {
		t.Errorf("unexpected first ref: %+v", refs[0])
	}
	if refs[0].Source != "duckduckgo" {
		t.Errorf("source = %q, want duckduckgo", refs[0].Source)
	}
}

func TestDuckDuckGoAdapter_CapsAtMaxResults(t *testing.T) {
	results := make([]ddgImageResult, 30)
	for i := range results {
		results[i] = ddgImageResult{Image: "https://img/x.jpg"}
	}
	a, _ := newTestAdapter(t, ddgHandler(t, results))

	refs, err := a.Search(context.Background(), "chair", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 5 {
		t.Errorf("got %d refs, want capped 5", len(refs))
	}
}

func TestDuckDuckGoAdapter_EmptyResultsNotError(t *testing.T) {
	a, _ := newTestAdapter(t, ddgHandler(t, nil))

	refs, err := a.Search(context.Background(), "xyzzy", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 0 {
		t.Errorf("got %d refs, want 0", len(refs))
	}
}

func TestDuckDuckGoAdapter_MissingVQDToken(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("no token here"))
	}))

	if _, err := a.Search(context.Background(), "chair", 10); err == nil {
		t.Error("expected error when vqd token missing")
	}
}
