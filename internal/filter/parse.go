package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/patsearch/internal/models"
)

// Accepted keys for ParseSpec. Aliases map loose input (CLI flags, query strings) onto
// the canonical predicates.
var specKeys = map[string]string{
	"classification":        "classification",
	"classification_prefix": "classification",
	"classification_code":   "classification",
	"title":                 "title",
	"title_contains":        "title",
	"title_keyword":         "title",
	"keyword":               "keyword",
	"text":                  "keyword",
}

// ParseSpec builds a FilterSpec from key/value pairs. Keys are case-insensitive; blank
// values are ignored. Unknown keys fail with ErrInvalidFilter.
func ParseSpec(values map[string]string) (models.FilterSpec, error) {
	var unknown, conflicts []string
	given := make(map[string]string, 3)
	for k, v := range values {
		canonical, ok := specKeys[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if prev, ok := given[canonical]; ok && prev != v {
			conflicts = append(conflicts, canonical)
			continue
		}
		given[canonical] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return models.FilterSpec{}, fmt.Errorf("%w: unsupported predicate(s) %s", ErrInvalidFilter, strings.Join(unknown, ", "))
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return models.FilterSpec{}, fmt.Errorf("%w: conflicting values for %s", ErrInvalidFilter, strings.Join(conflicts, ", "))
	}
	return models.FilterSpec{
		ClassificationPrefix: given["classification"],
		TitleContains:        given["title"],
		Keyword:              given["keyword"],
	}, nil
}
