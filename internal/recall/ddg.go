package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/itisrohit/Outlyne/internal/config"
	"github.com/itisrohit/Outlyne/internal/models"
)

const ddgSource = "duckduckgo"

var vqdPattern = regexp.MustCompile(`vqd=['"]([\d-]+)['"]`)

// DuckDuckGoAdapter recalls image candidates from DuckDuckGo image search.
// Each search is two requests: one HTML page load to obtain the vqd token,
// then the i.js JSON endpoint. Requests are rate limited to stay polite to
// the backend; the limiter is shared across concurrent searches.
type DuckDuckGoAdapter struct {
	baseURL    string
	region     string
	safeSearch string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type ddgImageResult struct {
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
}

type ddgImageResponse struct {
	Results []ddgImageResult `json:"results"`
}

// NewDuckDuckGoAdapter creates an adapter using the given recall settings.
func NewDuckDuckGoAdapter(cfg *config.RecallConfig, logger *zap.Logger) *DuckDuckGoAdapter {
	return &DuckDuckGoAdapter{
		baseURL:    "https://duckduckgo.com",
		region:     cfg.Region,
		safeSearch: cfg.SafeSearch,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		logger:     logger,
	}
}

// Search returns up to maxResults image candidates for query. An empty result
// set is not an error.
func (a *DuckDuckGoAdapter) Search(ctx context.Context, query string, maxResults int) ([]models.CandidateRef, error) {
	a.logger.Debug("recalling candidates", zap.String("query", query), zap.Int("max_results", maxResults))

	vqd, err := a.fetchVQD(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch vqd token: %w", err)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("l", a.region)
	params.Set("o", "json")
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("p", safeSearchParam(a.safeSearch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/i.js?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", a.baseURL+"/")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search: status %d", resp.StatusCode)
	}

	var parsed ddgImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode image search response: %w", err)
	}

	refs := make([]models.CandidateRef, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(refs) >= maxResults {
			break
		}
		refs = append(refs, models.CandidateRef{
			URL:          r.Image,
			ThumbnailURL: r.Thumbnail,
			Title:        r.Title,
			Source:       ddgSource,
		})
	}

	a.logger.Debug("recall complete", zap.String("query", query), zap.Int("candidates", len(refs)))
	return refs, nil
}

// fetchVQD loads the search page and extracts the vqd token the image
// endpoint requires.
func (a *DuckDuckGoAdapter) fetchVQD(ctx context.Context, query string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("iax", "images")
	params.Set("ia", "images")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search page: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	m := vqdPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("vqd token not found in search page")
	}
	return string(m[1]), nil
}

func safeSearchParam(level string) string {
	if level == "strict" {
		return "1"
	}
	return "-1"
}
