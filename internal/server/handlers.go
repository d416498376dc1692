package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"net/http"

	"go.uber.org/zap"

	"github.com/itisrohit/Outlyne/internal/models"
	"github.com/itisrohit/Outlyne/internal/ranking"
	"github.com/itisrohit/Outlyne/internal/search"
)

// searchRequest is the JSON payload for POST /api/v1/search.
type searchRequest struct {
	SketchBase64 string `json:"sketch_base64"`
	Query        string `json:"query,omitempty"`
	MaxResults   int    `json:"max_results,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SketchBase64 == "" {
		s.respondError(w, http.StatusBadRequest, "sketch_base64 is required")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.SketchBase64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "sketch_base64 is not valid base64")
		return
	}
	sketch, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "sketch is not a decodable image")
		return
	}

	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("max_results", req.MaxResults))
	response, err := s.orchestrator.Search(r.Context(), &models.SketchQuery{
		Sketch:     sketch,
		Text:       req.Query,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

// respondSearchError maps pipeline failure conditions to HTTP statuses.
func (s *Server) respondSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrNoCandidates):
		s.logger.Info("search found no candidates", zap.Error(err))
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, search.ErrModelUnavailable):
		s.logger.Error("embedding model unavailable", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, search.ErrNoneEncodable), errors.Is(err, ranking.ErrMismatch):
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"cached_embeddings":    s.orchestrator.CacheSize(),
		"embedding_dimensions": s.embedder.Dimensions(),
		"vocabulary_size":      s.vocab.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
