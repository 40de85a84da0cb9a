// Package embedding turns patent text into fixed-length vectors.
package embedding

import (
	"context"
	"errors"
)

// ErrProvider wraps failures reported by a remote embedding provider.
var ErrProvider = errors.New("embedding provider error")

// Embedder produces vector embeddings for text. Every vector returned by one Embedder has
// length Dimensions(). Returned slices must not be modified by callers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Provider names accepted in configuration.
const (
	ProviderMock   = "mock"
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
)
