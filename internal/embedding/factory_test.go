package embedding

import (
	"testing"

	"github.com/hyperjump/patsearch/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = ProviderMock
	cfg.Dimensions = 16

	e, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*Cached); !ok {
		t.Errorf("expected cached embedder, got %T", e)
	}
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}

	cfg.CacheSize = 0
	e, err = New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("expected bare mock embedder, got %T", e)
	}
}

func TestNew_ONNXFallsBackToMock(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = ProviderONNX
	cfg.ModelPath = "/nonexistent/model.onnx"
	cfg.CacheSize = 0
	cfg.Dimensions = 8

	e, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("expected mock fallback, got %T", e)
	}
}

func TestNew_Errors(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = "cohere"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected unknown provider error")
	}

	cfg.Provider = ProviderOpenAI
	cfg.OpenAI.APIKeyEnv = "PATSEARCH_TEST_UNSET_KEY"
	t.Setenv("PATSEARCH_TEST_UNSET_KEY", "")
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected missing API key error")
	}
}
