package models

// SearchResult is a ranked hit. Document is a copy owned by the caller.
type SearchResult struct {
	Document *Document `json:"document"`
	Score    float64   `json:"similarity_score"`
	Rank     int       `json:"rank"`
	Index    int       `json:"-"`
}

// Statistics aggregates similarity scores over a result set.
// Avg, Max and Min are nil when Count is zero.
type Statistics struct {
	Count int      `json:"count"`
	Avg   *float64 `json:"avg_similarity,omitempty"`
	Max   *float64 `json:"max_similarity,omitempty"`
	Min   *float64 `json:"min_similarity,omitempty"`
}

// SearchResponse is the response for a text or document search.
type SearchResponse struct {
	Results    []*SearchResult `json:"results"`
	Statistics Statistics      `json:"statistics"`
	QueryTime  int64           `json:"query_time_ms"`
	Query      string          `json:"query,omitempty"`
	DocumentID string          `json:"document_id,omitempty"`
}
