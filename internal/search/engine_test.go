package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hyperjump/patsearch/internal/embedding"
	"github.com/hyperjump/patsearch/internal/filter"
	"github.com/hyperjump/patsearch/internal/keyword"
	"github.com/hyperjump/patsearch/internal/metrics"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/ranking"
	"github.com/hyperjump/patsearch/internal/vector"
)

func abcCorpus(t *testing.T) *vector.Corpus {
	t.Helper()
	docs := []*models.Document{
		{ID: "A", Title: "Vehicle wheel hub", ClassificationCode: "B60B", Abstract: "hub", SearchableText: "vehicle wheel hub"},
		{ID: "B", Title: "Gear train", ClassificationCode: "F16H", SearchableText: "gear train"},
		{ID: "C", Title: "Wheel bearing", ClassificationCode: "B60B", Claims: []string{"1. A bearing."}, SearchableText: "vehicle wheel bearing"},
	}
	c, err := vector.NewCorpus(docs).WithEmbeddings([][]float32{{1, 0}, {0, 1}, {1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func resultIDs(results []*models.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Document.ID
	}
	return ids
}

func TestEngine_TextSearch(t *testing.T) {
	e := NewEngine(abcCorpus(t))
	ctx := context.Background()

	got, err := e.TextSearch(ctx, []float32{1, 0}, 2, models.FilterSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(resultIDs(got), []string{"A", "C"}) {
		t.Errorf("TextSearch() = %v, want [A C]", resultIDs(got))
	}

	got, err = e.TextSearch(ctx, []float32{0, 1}, 3, models.FilterSpec{ClassificationPrefix: "B60"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range got {
		if r.Document.ClassificationCode != "B60B" {
			t.Errorf("result %s violates filter", r.Document.ID)
		}
	}
	if !reflect.DeepEqual(resultIDs(got), []string{"A", "C"}) {
		t.Errorf("filtered = %v, want [A C]", resultIDs(got))
	}

	got, err = e.TextSearch(ctx, []float32{1, 0}, 3, models.FilterSpec{TitleContains: "nothing"})
	if err != nil || len(got) != 0 {
		t.Errorf("empty admissible set: %v, %v", resultIDs(got), err)
	}
}

func TestEngine_TextSearch_Errors(t *testing.T) {
	ctx := context.Background()

	bare := NewEngine(vector.NewCorpus([]*models.Document{{ID: "A"}}))
	if _, err := bare.TextSearch(ctx, []float32{1}, 1, models.FilterSpec{}); !errors.Is(err, ranking.ErrNoEmbeddings) {
		t.Errorf("no embeddings: got %v", err)
	}

	e := NewEngine(abcCorpus(t))
	if _, err := e.TextSearch(ctx, []float32{1, 0}, 1, models.FilterSpec{Keyword: "wheel"}); !errors.Is(err, filter.ErrInvalidFilter) {
		t.Errorf("keyword without index: got %v", err)
	}
	if _, err := e.TextSearch(ctx, []float32{1}, 1, models.FilterSpec{}); !errors.Is(err, ranking.ErrDimensionMismatch) {
		t.Errorf("dimension mismatch: got %v", err)
	}
}

func TestEngine_TextSearch_KeywordFilter(t *testing.T) {
	corpus := abcCorpus(t)
	idx, err := keyword.NewBleveIndex(context.Background(), corpus.Documents())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	e := NewEngine(corpus, WithFilterEngine(filter.NewEngine(filter.WithKeywordMatcher(idx))))
	got, err := e.TextSearch(context.Background(), []float32{1, 0}, 5, models.FilterSpec{Keyword: "bearing"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(resultIDs(got), []string{"C"}) {
		t.Errorf("keyword filtered = %v, want [C]", resultIDs(got))
	}
}

func TestEngine_DocumentSearch(t *testing.T) {
	e := NewEngine(abcCorpus(t))
	ctx := context.Background()

	got, err := e.DocumentSearch(ctx, "A", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Document.ID != "C" || got[0].Score != 1 {
		t.Fatalf("DocumentSearch(A, 1) = %v", resultIDs(got))
	}

	got, err = e.DocumentSearch(ctx, "B", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(resultIDs(got), []string{"A", "C"}) {
		t.Errorf("DocumentSearch(B, 5) = %v, want [A C]", resultIDs(got))
	}
	for i, r := range got {
		if r.Rank != i+1 {
			t.Errorf("rank %d = %d", i, r.Rank)
		}
	}

	if _, err := e.DocumentSearch(ctx, "Z", 1); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("missing id: got %v", err)
	}
}

func TestEngine_SearchMetricsByOutcome(t *testing.T) {
	ctx := context.Background()
	count := func(kind, status string) float64 {
		return testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues(kind, status))
	}

	e := NewEngine(abcCorpus(t))
	before := count("document", "not_found")
	if _, err := e.DocumentSearch(ctx, "Z", 1); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("missing id: got %v", err)
	}
	if got := count("document", "not_found") - before; got != 1 {
		t.Errorf("not_found count delta = %v, want 1", got)
	}

	bare := NewEngine(vector.NewCorpus([]*models.Document{{ID: "A"}}))
	before = count("text", "no_embeddings")
	if _, err := bare.TextSearch(ctx, []float32{1}, 1, models.FilterSpec{}); !errors.Is(err, ranking.ErrNoEmbeddings) {
		t.Fatalf("no embeddings: got %v", err)
	}
	if got := count("text", "no_embeddings") - before; got != 1 {
		t.Errorf("no_embeddings count delta = %v, want 1", got)
	}

	before = count("text", "invalid_filter")
	if _, err := e.TextSearch(ctx, []float32{1, 0}, 1, models.FilterSpec{Keyword: "wheel"}); !errors.Is(err, filter.ErrInvalidFilter) {
		t.Fatalf("keyword without index: got %v", err)
	}
	if got := count("text", "invalid_filter") - before; got != 1 {
		t.Errorf("invalid_filter count delta = %v, want 1", got)
	}
}

func TestResolver_DuplicateIDsAreAllExcluded(t *testing.T) {
	docs := []*models.Document{{ID: "A"}, {ID: "A"}, {ID: "B"}, {ID: "C"}}
	c, err := vector.NewCorpus(docs).WithEmbeddings([][]float32{{1, 0}, {1, 0}, {1, 0.1}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(ranking.NewEngine(nil), nil)
	got, err := r.ByDocumentID(context.Background(), c, "A", 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range got {
		if res.Document.ID == "A" {
			t.Error("reference id must never appear in results")
		}
	}
	if len(got) > 2 {
		t.Errorf("len = %d, want <= 2", len(got))
	}
}

func TestResolver_Reembed(t *testing.T) {
	emb := embedding.NewMockEmbedder(16)
	ctx := context.Background()
	docs := []*models.Document{
		{ID: "A", SearchableText: "wheel hub bearing"},
		{ID: "B", SearchableText: "wheel hub bearing assembly"},
		{ID: "C", SearchableText: "semiconductor wafer"},
	}
	vecs, err := emb.EmbedBatch(ctx, []string{"x", "y", "z"}) // stored vectors unrelated to text
	if err != nil {
		t.Fatal(err)
	}
	c, err := vector.NewCorpus(docs).WithEmbeddings(vecs)
	if err != nil {
		t.Fatal(err)
	}

	e := NewEngine(c, WithEmbedder(emb), WithReembedSimilar(true))
	got, err := e.DocumentSearch(ctx, "A", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Document.ID != "B" {
		t.Errorf("re-embedded similar = %v, want [B]", resultIDs(got))
	}
}

func TestEngine_Query(t *testing.T) {
	emb := embedding.NewMockEmbedder(64)
	ctx := context.Background()
	docs := []*models.Document{
		{ID: "P1", Title: "Battery pack", SearchableText: "electric vehicle battery management"},
		{ID: "P2", Title: "Gear", SearchableText: "planetary gear transmission"},
	}
	vecs, err := emb.EmbedBatch(ctx, []string{docs[0].SearchableText, docs[1].SearchableText})
	if err != nil {
		t.Fatal(err)
	}
	c, err := vector.NewCorpus(docs).WithEmbeddings(vecs)
	if err != nil {
		t.Fatal(err)
	}

	e := NewEngine(c, WithEmbedder(emb))
	resp, err := e.Query(ctx, "vehicle battery", 1, models.FilterSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Document.ID != "P1" {
		t.Errorf("Query() = %v, want [P1]", resultIDs(resp.Results))
	}
	if resp.Statistics.Count != 1 || resp.Query != "vehicle battery" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if _, err := NewEngine(c).Query(ctx, "x", 1, models.FilterSpec{}); !errors.Is(err, ErrNoEmbedder) {
		t.Errorf("no embedder: got %v", err)
	}
}

func TestEngine_DocumentAndStats(t *testing.T) {
	e := NewEngine(abcCorpus(t))
	doc, err := e.Document("B")
	if err != nil {
		t.Fatal(err)
	}
	doc.Title = "changed"
	again, _ := e.Document("B")
	if again.Title != "Gear train" {
		t.Error("Document must return a copy")
	}
	if _, err := e.Document("nope"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("got %v", err)
	}

	stats := e.CorpusStats()
	want := models.CorpusStats{Total: 3, WithAbstract: 1, WithClaims: 1, MissingAbstract: 2, MissingClaims: 2}
	if stats != want {
		t.Errorf("CorpusStats() = %+v, want %+v", stats, want)
	}
}

func TestComputeStatistics(t *testing.T) {
	empty := ComputeStatistics(nil)
	if empty.Count != 0 || empty.Avg != nil || empty.Max != nil || empty.Min != nil {
		t.Errorf("empty statistics = %+v", empty)
	}

	s := ComputeStatistics([]*models.SearchResult{{Score: 0.5}, {Score: 1}, {Score: -0.5}})
	if s.Count != 3 || *s.Max != 1 || *s.Min != -0.5 || *s.Avg != 1.0/3.0 {
		t.Errorf("statistics = count %d avg %v max %v min %v", s.Count, *s.Avg, *s.Max, *s.Min)
	}
}

func TestProcessRequest(t *testing.T) {
	req := &models.SearchRequest{Query: "  wheel ", Filters: models.FilterSpec{TitleContains: " hub "}}
	if err := ProcessRequest(req, 10, 50); err != nil {
		t.Fatal(err)
	}
	if req.Query != "wheel" || req.TopK != 10 || req.Filters.TitleContains != "hub" {
		t.Errorf("processed = %+v", req)
	}

	req = &models.SearchRequest{Vector: []float32{1}, TopK: 500}
	if err := ProcessRequest(req, 10, 50); err != nil || req.TopK != 50 {
		t.Errorf("clamp: %+v, %v", req, err)
	}

	if err := ProcessRequest(&models.SearchRequest{Query: " "}, 10, 50); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("empty: got %v", err)
	}
}
