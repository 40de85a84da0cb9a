// Package keyword provides full-text matching over corpus documents.
package keyword

import "context"

// Matcher resolves a free-text predicate to the corpus indices whose text matches it.
type Matcher interface {
	// Match returns the ascending corpus indices of documents matching query.
	Match(ctx context.Context, query string) ([]int, error)
	// DocCount returns the number of indexed documents.
	DocCount() (uint64, error)
	Close() error
}
