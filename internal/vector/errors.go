package vector

import "errors"

// Sentinel errors for embedding persistence.
var (
	// ErrNotFound means no persisted embeddings exist; callers should compute and save them.
	ErrNotFound = errors.New("vector store: embeddings not found")
	// ErrShapeMismatch means persisted embeddings do not line up with the documents.
	ErrShapeMismatch = errors.New("vector store: shape mismatch")
	// ErrSaveFailed means embeddings could not be written.
	ErrSaveFailed = errors.New("vector store: save failed")
)

// StoreError wraps an underlying error with the operation and location for diagnostics.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }
