package keyword

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/patsearch/internal/models"
)

// batchSize bounds the number of documents sent to bleve per batch.
const batchSize = 500

// indexedDoc is the shape stored in bleve. The bleve document ID is the corpus index, so
// duplicate patent ids never collide.
type indexedDoc struct {
	Title          string `json:"title"`
	Text           string `json:"text"`
	Classification string `json:"classification"`
}

// BleveIndex implements Matcher with an in-memory Bleve index built once per corpus.
type BleveIndex struct {
	index bleve.Index
	size  int
}

// NewBleveIndex indexes docs in an in-memory Bleve index. Corpus order defines the hit ids.
func NewBleveIndex(ctx context.Context, docs []*models.Document) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps matching literal.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("classification", bleve.NewKeywordFieldMapping())
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	b := &BleveIndex{index: index, size: len(docs)}

	batch := index.NewBatch()
	for i, d := range docs {
		if err := batch.Index(strconv.Itoa(i), indexedDoc{
			Title:          d.Title,
			Text:           d.SearchableText,
			Classification: d.ClassificationCode,
		}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index document %d: %w", i, err)
		}
		if batch.Size() >= batchSize {
			if err := ctx.Err(); err != nil {
				_ = index.Close()
				return nil, err
			}
			if err := index.Batch(batch); err != nil {
				_ = index.Close()
				return nil, fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index batch: %w", err)
		}
	}
	return b, nil
}

// Match runs a conjunctive match query (every term must appear) over the searchable text.
func (b *BleveIndex) Match(ctx context.Context, query string) ([]int, error) {
	if b.size == 0 {
		return []int{}, nil
	}
	mq := bleve.NewMatchQuery(query)
	mq.SetField("text")
	mq.SetOperator(blevequery.MatchQueryOperatorAnd)
	req := bleve.NewSearchRequest(mq)
	req.Size = b.size
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]int, 0, len(results.Hits))
	for _, hit := range results.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil {
			return nil, fmt.Errorf("unexpected hit id %q: %w", hit.ID, err)
		}
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
