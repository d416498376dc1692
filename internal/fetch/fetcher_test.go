package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/config"
	"github.com/itisrohit/Outlyne/internal/models"
)

func testFetchConfig(maxConcurrent int) *config.FetchConfig {
	return &config.FetchConfig{
		MaxConcurrent:         maxConcurrent,
		TimeoutSeconds:        2,
		ConnectTimeoutSeconds: 1,
		MaxBodyBytes:          1 << 20,
	}
}

func TestFetcher_FetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "bytes-for%s", r.URL.Path)
	}))
	defer srv.Close()

	f := NewFetcher(testFetchConfig(4), zap.NewNop())
	refs := []models.CandidateRef{
		{URL: srv.URL + "/a"},
		{URL: srv.URL + "/b", ThumbnailURL: srv.URL + "/b_thumb"},
		{URL: srv.URL + "/c"},
	}
	results := f.FetchAll(context.Background(), refs)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, res := range results {
		if res.Ref != refs[i] {
			t.Errorf("result %d out of order: %+v", i, res.Ref)
		}
	}
	if string(results[0].Data) != "bytes-for/a" {
		t.Errorf("result 0 data = %q", results[0].Data)
	}
	// Thumbnail preferred over primary URL.
	if string(results[1].Data) != "bytes-for/b_thumb" {
		t.Errorf("result 1 data = %q", results[1].Data)
	}
}

func TestFetcher_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(testFetchConfig(4), zap.NewNop())
	refs := []models.CandidateRef{
		{URL: srv.URL + "/good"},
		{URL: srv.URL + "/missing"},
		{}, // no URL at all
		{URL: "http://127.0.0.1:1/unreachable"},
		{URL: srv.URL + "/good2"},
	}
	results := f.FetchAll(context.Background(), refs)

	if len(results) != 5 {
		t.Fatalf("got %d results, want one per candidate", len(results))
	}
	if results[0].Data == nil || results[4].Data == nil {
		t.Error("successful downloads should carry data")
	}
	for _, i := range []int{1, 2, 3} {
		if results[i].Data != nil {
			t.Errorf("result %d should be absent", i)
		}
	}
}

func TestFetcher_ConcurrencyCeiling(t *testing.T) {
	const ceiling = 15
	const candidates = 50

	var inFlight, peak atomic.Int64
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(testFetchConfig(ceiling), zap.NewNop())
	refs := make([]models.CandidateRef, candidates)
	for i := range refs {
		refs[i] = models.CandidateRef{URL: fmt.Sprintf("%s/%d", srv.URL, i)}
	}
	results := f.FetchAll(context.Background(), refs)

	if len(results) != candidates {
		t.Fatalf("got %d results, want %d", len(results), candidates)
	}
	for i, res := range results {
		if res.Data == nil {
			t.Errorf("result %d unexpectedly absent", i)
		}
	}
	if got := peak.Load(); got > ceiling {
		t.Errorf("peak in-flight = %d, exceeds ceiling %d", got, ceiling)
	}
}

func TestFetcher_BodySizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	cfg := testFetchConfig(4)
	cfg.MaxBodyBytes = 1024
	f := NewFetcher(cfg, zap.NewNop())

	results := f.FetchAll(context.Background(), []models.CandidateRef{{URL: srv.URL}})
	if results[0].Data != nil {
		t.Error("oversized body should be treated as a failed fetch")
	}
}
