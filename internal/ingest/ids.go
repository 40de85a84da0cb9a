package ingest

import (
	"crypto/sha1"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/patsearch/internal/models"
)

// IDGenerator assigns ids to patents whose source record has none.
type IDGenerator interface {
	// NextID returns an id for doc, which sits at ordinal (0-based) in the corpus.
	NextID(doc *models.Document, ordinal int) string
}

// ID strategy names accepted in configuration.
const (
	StrategySequence    = "sequence"
	StrategyContentHash = "content-hash"
)

// NewIDGenerator returns the generator for a strategy name.
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case StrategySequence, "":
		return SequenceIDs{}, nil
	case StrategyContentHash:
		return ContentHashIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (supported: sequence, content-hash)", strategy)
	}
}

// SequenceIDs numbers documents by corpus position: PATENT_1, PATENT_2, ...
type SequenceIDs struct{}

// NextID returns PATENT_<ordinal+1>.
func (SequenceIDs) NextID(_ *models.Document, ordinal int) string {
	return fmt.Sprintf("PATENT_%d", ordinal+1)
}

var contentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/hyperjump/patsearch/patents"))

// ContentHashIDs derives a UUIDv5 from the document content, so the same record keeps its id
// across reloads regardless of file order.
type ContentHashIDs struct{}

// NextID returns PATENT_<uuid>.
func (ContentHashIDs) NextID(doc *models.Document, _ int) string {
	h := sha1.New()
	for _, part := range []string{doc.Title, doc.Abstract, strings.Join(doc.Claims, "\x1f"),
		strings.Join(doc.Description, "\x1f"), doc.ClassificationCode, doc.Citation} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "PATENT_" + uuid.NewSHA1(contentNamespace, h.Sum(nil)).String()
}
