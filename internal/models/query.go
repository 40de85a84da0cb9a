package models

import "strings"

// FilterSpec restricts a search to documents satisfying every non-empty predicate.
// A spec with no predicates means "no restriction", which is different from an empty result.
type FilterSpec struct {
	// ClassificationPrefix matches documents whose classification code starts with it (case-sensitive).
	ClassificationPrefix string `json:"classification_prefix,omitempty"`
	// TitleContains matches documents whose title contains it, ignoring case.
	TitleContains string `json:"title_contains,omitempty"`
	// Keyword matches documents whose searchable text matches it in the full-text index.
	Keyword string `json:"keyword,omitempty"`
}

// IsEmpty reports whether no predicate is set.
func (f FilterSpec) IsEmpty() bool {
	return f.ClassificationPrefix == "" && f.TitleContains == "" && f.Keyword == ""
}

// Normalize trims surrounding whitespace from every predicate, so blank input counts as absent.
func (f FilterSpec) Normalize() FilterSpec {
	return FilterSpec{
		ClassificationPrefix: strings.TrimSpace(f.ClassificationPrefix),
		TitleContains:        strings.TrimSpace(f.TitleContains),
		Keyword:              strings.TrimSpace(f.Keyword),
	}
}

// SearchRequest is a free-text or vector search as accepted by the HTTP API.
type SearchRequest struct {
	Query   string     `json:"query,omitempty"`
	Vector  []float32  `json:"vector,omitempty"`
	TopK    int        `json:"top_k,omitempty"`
	Filters FilterSpec `json:"filters,omitempty"`
}
