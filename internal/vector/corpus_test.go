package vector

import (
	"errors"
	"testing"

	"github.com/hyperjump/patsearch/internal/models"
)

func testDocs(ids ...string) []*models.Document {
	docs := make([]*models.Document, len(ids))
	for i, id := range ids {
		docs[i] = &models.Document{ID: id, Title: "title " + id, SearchableText: "text " + id}
	}
	return docs
}

func TestCorpus_WithEmbeddings(t *testing.T) {
	base := NewCorpus(testDocs("a", "b"))
	if base.HasEmbeddings() {
		t.Fatal("new corpus should have no embeddings")
	}
	vecs := [][]float32{{3, 4}, {0, 1}}
	c, err := base.WithEmbeddings(vecs)
	if err != nil {
		t.Fatal(err)
	}
	if !c.HasEmbeddings() || c.Dimensions() != 2 || c.Len() != 2 {
		t.Errorf("unexpected corpus: dims=%d len=%d", c.Dimensions(), c.Len())
	}
	if base.HasEmbeddings() {
		t.Error("WithEmbeddings must not mutate the receiver")
	}
	if c.Norm(0) != 5 {
		t.Errorf("Norm(0) = %f, want 5", c.Norm(0))
	}
	vecs[0][0] = 100
	if c.Vector(0)[0] != 3 {
		t.Error("corpus should copy vectors")
	}
}

func TestCorpus_WithEmbeddings_ShapeMismatch(t *testing.T) {
	base := NewCorpus(testDocs("a", "b"))
	tests := []struct {
		name string
		vecs [][]float32
	}{
		{"too few rows", [][]float32{{1, 0}}},
		{"too many rows", [][]float32{{1, 0}, {0, 1}, {1, 1}}},
		{"ragged", [][]float32{{1, 0}, {0, 1, 2}}},
		{"empty row", [][]float32{{1, 0}, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.WithEmbeddings(tt.vecs)
			if !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("err = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestCorpus_IndexOf_FirstMatch(t *testing.T) {
	c := NewCorpus(testDocs("a", "dup", "dup"))
	i, ok := c.IndexOf("dup")
	if !ok || i != 1 {
		t.Errorf("IndexOf(dup) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := c.IndexOf("missing"); ok {
		t.Error("missing id should not be found")
	}
	if got := c.Texts(); len(got) != 3 || got[0] != "text a" {
		t.Errorf("Texts() = %v", got)
	}
}

func TestCorpus_DuplicateIDs(t *testing.T) {
	c := NewCorpus(testDocs("A", "B", "A", "C", "B", "A"))
	got := c.DuplicateIDs()
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("DuplicateIDs() = %v, want [A B]", got)
	}
	if got := NewCorpus(testDocs("A", "B")).DuplicateIDs(); len(got) != 0 {
		t.Errorf("DuplicateIDs() = %v, want none", got)
	}
}

func TestValidateMatrix_IDs(t *testing.T) {
	docs := testDocs("a", "b")
	err := ValidateMatrix(docs, []string{"b", "a"}, [][]float32{{1}, {2}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("reordered ids should be a shape mismatch, got %v", err)
	}
	if err := ValidateMatrix(docs, []string{"a", "b"}, [][]float32{{1}, {2}}); err != nil {
		t.Errorf("matching ids: %v", err)
	}
}
