package search

import (
	"errors"
	"strings"

	"github.com/hyperjump/patsearch/internal/models"
)

// ErrEmptyQuery is returned for a request with neither query text nor a vector.
var ErrEmptyQuery = errors.New("query or vector is required")

// ProcessRequest validates req and applies topK defaults in place.
func ProcessRequest(req *models.SearchRequest, defaultTopK, maxTopK int) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" && len(req.Vector) == 0 {
		return ErrEmptyQuery
	}
	req.Filters = req.Filters.Normalize()
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}
	if maxTopK > 0 && req.TopK > maxTopK {
		req.TopK = maxTopK
	}
	return nil
}
