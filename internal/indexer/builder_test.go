package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/hyperjump/patsearch/internal/embedding"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/vector"
)

func testDocs(n int) []*models.Document {
	docs := make([]*models.Document, n)
	for i := range docs {
		id := string(rune('A' + i))
		docs[i] = &models.Document{ID: id, SearchableText: "patent text " + id}
	}
	return docs
}

func fileStore(t *testing.T) *vector.FileStore {
	t.Helper()
	s, err := vector.NewFileStore(filepath.Join(t.TempDir(), "emb", "patents.psvm"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// flakyEmbedder fails on the failAt-th EmbedBatch call (1-based) and counts calls.
type flakyEmbedder struct {
	*embedding.MockEmbedder
	mu     sync.Mutex
	calls  int
	failAt int
}

func (f *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n == f.failAt {
		return nil, errors.New("provider unavailable")
	}
	return f.MockEmbedder.EmbedBatch(ctx, texts)
}

func TestBatches(t *testing.T) {
	got := Batches(5, 2)
	want := []Batch{{0, 2}, {2, 4}, {4, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Batches(5, 2) = %v, want %v", got, want)
	}
	if Batches(0, 2) != nil {
		t.Error("no items should give no batches")
	}
	if got := Batches(3, 0); !reflect.DeepEqual(got, []Batch{{0, 3}}) {
		t.Errorf("Batches(3, 0) = %v", got)
	}
}

func TestBuilder_ComputeThenLoad(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)
	docs := testDocs(5)
	emb := &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(8)}

	var progress []int
	b := NewBuilder(store, emb, WithBatchSize(2), WithProgress(func(done, total int) {
		progress = append(progress, done)
	}))
	corpus, err := b.Build(ctx, docs)
	if err != nil {
		t.Fatal(err)
	}
	if !corpus.HasEmbeddings() || corpus.Len() != 5 || corpus.Dimensions() != 8 {
		t.Fatalf("unexpected corpus: len=%d dims=%d", corpus.Len(), corpus.Dimensions())
	}
	if emb.calls != 3 {
		t.Errorf("EmbedBatch calls = %d, want 3", emb.calls)
	}
	if !reflect.DeepEqual(progress, []int{2, 4, 5}) {
		t.Errorf("progress = %v", progress)
	}

	// Cached result on the same builder.
	again, err := b.Build(ctx, docs)
	if err != nil || again != corpus {
		t.Errorf("second Build should reuse the corpus: %v", err)
	}

	// A fresh builder loads from the store without embedding.
	emb2 := &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(8)}
	loaded, err := NewBuilder(store, emb2).Build(ctx, docs)
	if err != nil {
		t.Fatal(err)
	}
	if emb2.calls != 0 {
		t.Errorf("stored embeddings should be reused, got %d embed calls", emb2.calls)
	}
	if !reflect.DeepEqual(loaded.Vectors(), corpus.Vectors()) {
		t.Error("loaded vectors differ from computed")
	}
}

func TestBuilder_PartialFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)
	docs := testDocs(5)
	b := NewBuilder(store, &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(4), failAt: 2}, WithBatchSize(2))

	if _, err := b.Build(ctx, docs); err == nil {
		t.Fatal("expected error")
	}
	if _, err := store.Load(ctx, docs); !errors.Is(err, vector.ErrNotFound) {
		t.Errorf("nothing should be saved after a failed batch, got %v", err)
	}

	// A later call retries.
	b2 := NewBuilder(store, &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(4)}, WithBatchSize(2))
	if _, err := b2.Build(ctx, docs); err != nil {
		t.Fatal(err)
	}
}

func TestBuilder_ShapeMismatchSurfaced(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)
	emb := &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(4)}
	if _, err := NewBuilder(store, emb).Build(ctx, testDocs(3)); err != nil {
		t.Fatal(err)
	}

	_, err := NewBuilder(store, emb).Build(ctx, testDocs(4))
	if !errors.Is(err, vector.ErrShapeMismatch) {
		t.Errorf("got %v, want ErrShapeMismatch", err)
	}

	corpus, err := NewBuilder(store, emb).Rebuild(ctx, testDocs(4))
	if err != nil {
		t.Fatal(err)
	}
	if corpus.Len() != 4 {
		t.Errorf("Rebuild len = %d", corpus.Len())
	}
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(fileStore(t), embedding.NewMockEmbedder(4)).Build(ctx, testDocs(2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestBuilder_ConcurrentBuildComputesOnce(t *testing.T) {
	ctx := context.Background()
	emb := &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(4)}
	b := NewBuilder(fileStore(t), emb, WithBatchSize(100))
	docs := testDocs(6)

	var wg sync.WaitGroup
	results := make([]*vector.Corpus, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := b.Build(ctx, docs)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = c
		}()
	}
	wg.Wait()
	if emb.calls != 1 {
		t.Errorf("EmbedBatch calls = %d, want 1", emb.calls)
	}
	for _, c := range results {
		if c != results[0] {
			t.Error("callers should share one corpus")
		}
	}
}
