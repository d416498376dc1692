// Package fetch downloads candidate thumbnails under a global concurrency ceiling.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/itisrohit/Outlyne/internal/config"
	"github.com/itisrohit/Outlyne/internal/models"
)

// Result pairs a candidate with its downloaded bytes. Data is nil when the
// download failed or the candidate had no fetchable URL.
type Result struct {
	Ref  models.CandidateRef
	Data []byte
}

// Fetcher downloads thumbnails with a process-wide concurrency ceiling.
// One Fetcher is shared by all in-flight search requests, so the ceiling is
// a global fetch budget, not a per-request one.
type Fetcher struct {
	httpClient   *http.Client
	sem          *semaphore.Weighted
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewFetcher creates a fetcher from the given settings. Per-request total and
// connect timeouts are independent per download.
func NewFetcher(cfg *config.FetchConfig, logger *zap.Logger) *Fetcher {
	dialer := &net.Dialer{Timeout: time.Duration(cfg.ConnectTimeoutSeconds) * time.Second}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConns:        cfg.MaxConcurrent,
				MaxIdleConnsPerHost: 4,
			},
		},
		sem:          semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger,
	}
}

// FetchAll downloads every candidate's thumbnail (falling back to the primary
// URL) and returns one Result per input candidate, in input order. It returns
// only after every download has settled. Failures yield a nil Data and never
// abort the batch; a candidate with no URL yields nil Data without a network
// call.
func (f *Fetcher) FetchAll(ctx context.Context, refs []models.CandidateRef) []Result {
	results := make([]Result, len(refs))
	var wg sync.WaitGroup

	for i, ref := range refs {
		results[i].Ref = ref
		url := ref.FetchURL()
		if url == "" {
			continue
		}

		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			if err := f.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer f.sem.Release(1)

			data, err := f.fetchOne(ctx, url)
			if err != nil {
				f.logger.Debug("thumbnail download failed", zap.String("url", url), zap.Error(err))
				return
			}
			results[i].Data = data
		}(i, url)
	}

	wg.Wait()
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", f.maxBodyBytes)
	}
	return data, nil
}
