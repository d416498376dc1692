// Package search composes the sketch-to-image pipeline: embed, recall,
// fetch, encode, rank.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/classify"
	"github.com/itisrohit/Outlyne/internal/config"
	"github.com/itisrohit/Outlyne/internal/embedding"
	"github.com/itisrohit/Outlyne/internal/encode"
	"github.com/itisrohit/Outlyne/internal/fetch"
	"github.com/itisrohit/Outlyne/internal/models"
	"github.com/itisrohit/Outlyne/internal/ranking"
	"github.com/itisrohit/Outlyne/internal/recall"
)

// Orchestrator runs one search request through the pipeline stages in strict
// sequence. Stages never stream into each other: a stage starts only after
// the previous stage's whole batch has settled. The orchestrator is safe for
// concurrent requests; the embedding cache and the fetcher's concurrency
// budget are the only state shared between them.
type Orchestrator struct {
	embedder   embedding.Embedder
	cache      *embedding.Cache
	adapter    recall.SearchAdapter
	fetcher    *fetch.Fetcher
	encoder    *encode.Encoder
	classifier *classify.Classifier
	config     *config.SearchConfig
	logger     *zap.Logger
}

// NewOrchestrator creates an orchestrator from its stage implementations.
func NewOrchestrator(
	embedder embedding.Embedder,
	cache *embedding.Cache,
	adapter recall.SearchAdapter,
	fetcher *fetch.Fetcher,
	encoder *encode.Encoder,
	classifier *classify.Classifier,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		embedder:   embedder,
		cache:      cache,
		adapter:    adapter,
		fetcher:    fetcher,
		encoder:    encoder,
		classifier: classifier,
		config:     cfg,
		logger:     logger,
	}
}

// Search runs the full pipeline for one sketch query.
func (o *Orchestrator) Search(ctx context.Context, query *models.SketchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(o.config.DefaultLimit, o.config.MaxLimit); err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	logger := o.logger.With(zap.String("request_id", requestID))

	// Embedding: sketch digest -> cached or freshly computed embedding.
	digest := embedding.SketchDigest(query.Sketch)
	queryVec, cached, err := o.cache.GetOrCompute(digest, func() ([]float32, error) {
		return o.embedder.EmbedImage(ctx, query.Sketch)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed sketch: %v", ErrModelUnavailable, err)
	}
	logger.Debug("sketch embedded",
		zap.String("digest", digest[:12]), zap.Bool("cache_hit", cached), zap.Int("dims", len(queryVec)))

	// Recalling: text hint verbatim, or zero-shot label from the embedding.
	recallQuery := query.Text
	if recallQuery == "" {
		recallQuery, err = o.classifier.Classify(ctx, queryVec)
		if err != nil {
			return nil, fmt.Errorf("%w: classify sketch: %v", ErrModelUnavailable, err)
		}
		logger.Info("derived recall query from sketch", zap.String("label", recallQuery))
	}

	overfetch := query.MaxResults * o.config.OverfetchMultiplier
	refs, err := o.adapter.Search(ctx, recallQuery, overfetch)
	if err != nil {
		logger.Warn("recall failed", zap.String("query", recallQuery), zap.Error(err))
		return nil, fmt.Errorf("%w: recall: %v", ErrNoCandidates, err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: query %q", ErrNoCandidates, recallQuery)
	}
	logger.Info("recalled candidates", zap.String("query", recallQuery), zap.Int("count", len(refs)))

	// Fetching: all downloads settle before encoding starts.
	fetched := o.fetcher.FetchAll(ctx, refs)

	// Encoding: per-candidate failures are dropped inside the encoder.
	candidateVecs, candidateRefs := o.encoder.EncodeAll(ctx, fetched)
	if len(candidateVecs) == 0 {
		return nil, fmt.Errorf("%w: %d candidates recalled", ErrNoneEncodable, len(refs))
	}
	logger.Info("encoded candidates", zap.Int("encoded", len(candidateVecs)), zap.Int("recalled", len(refs)))

	// Ranking over the full encoded set; truncation happens here, not there.
	ranked, err := ranking.Rank(queryVec, candidateVecs, candidateRefs)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	if len(ranked) > query.MaxResults {
		ranked = ranked[:query.MaxResults]
	}

	return &models.SearchResponse{
		Query:     recallQuery,
		Results:   ranked,
		Count:     len(ranked),
		QueryTime: time.Since(startTime).Milliseconds(),
	}, nil
}

// CacheSize returns the number of cached sketch embeddings, for the status endpoint.
func (o *Orchestrator) CacheSize() int {
	return o.cache.Len()
}
