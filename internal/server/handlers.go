package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/filter"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/ranking"
	"github.com/hyperjump/patsearch/internal/search"
	"github.com/hyperjump/patsearch/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := search.ProcessRequest(&req, s.config.Search.DefaultTopK, s.config.Search.MaxTopK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", req.Query),
		zap.Int("vector_len", len(req.Vector)),
		zap.Int("top_k", req.TopK),
	)

	var (
		resp *models.SearchResponse
		err  error
	)
	if len(req.Vector) > 0 {
		start := time.Now()
		var results []*models.SearchResult
		results, err = s.engine.TextSearch(r.Context(), req.Vector, req.TopK, req.Filters)
		if err == nil {
			resp = &models.SearchResponse{
				Results:    results,
				Statistics: search.ComputeStatistics(results),
				QueryTime:  time.Since(start).Milliseconds(),
			}
		}
	} else {
		resp, err = s.engine.Query(r.Context(), req.Query, req.TopK, req.Filters)
	}
	if err != nil {
		s.respondSearchError(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSearchQuery serves GET /search?q=...&top_k=...; any other parameter is a filter
// predicate such as classification or title.
func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	req := models.SearchRequest{Query: params.Get("q")}
	if raw := params.Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		req.TopK = n
	}
	predicates := make(map[string]string, len(params))
	for k := range params {
		if k != "q" && k != "top_k" {
			predicates[k] = params.Get(k)
		}
	}
	spec, err := filter.ParseSpec(predicates)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Filters = spec
	if err := search.ProcessRequest(&req, s.config.Search.DefaultTopK, s.config.Search.MaxTopK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.engine.Query(r.Context(), req.Query, req.TopK, req.Filters)
	if err != nil {
		s.respondSearchError(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.engine.Document(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}
	topK = s.config.Search.ClampTopK(topK)
	s.logger.Debug("similar request", zap.String("id", id), zap.Int("top_k", topK))

	resp, err := s.engine.Similar(r.Context(), id, topK)
	if err != nil {
		s.respondSearchError(w, "similar search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	corpus := s.engine.Corpus()
	resp := map[string]interface{}{
		"corpus":         s.engine.CorpusStats(),
		"has_embeddings": corpus != nil && corpus.HasEmbeddings(),
	}
	if corpus != nil {
		resp["dimensions"] = corpus.Dimensions()
	}

	cfg := s.config
	resp["config"] = map[string]interface{}{
		"embedding_provider":   cfg.Embedding.Provider,
		"embedding_model":      cfg.Embedding.Model,
		"embedding_dimensions": cfg.Embedding.Dimensions,
		"embeddings_store":     cfg.Storage.EmbeddingsStore,
		"catalog_path":         cfg.Storage.CatalogPath,
		"embeddings_path":      cfg.Storage.EmbeddingsPath,
		"default_top_k":        cfg.Search.DefaultTopK,
		"max_top_k":            cfg.Search.MaxTopK,
	}
	diskBytes, err := storage.DiskUsageBytes(cfg.Storage.CatalogPath, cfg.Storage.EmbeddingsPath)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	} else {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps search errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, filter.ErrInvalidFilter),
		errors.Is(err, ranking.ErrDimensionMismatch),
		errors.Is(err, search.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ranking.ErrNoEmbeddings), errors.Is(err, search.ErrNoEmbedder):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondSearchError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
