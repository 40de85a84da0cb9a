package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/keyword"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/vector"
)

// ErrInvalidFilter reports a malformed or unsupported filter spec. It is returned before any
// scoring happens.
var ErrInvalidFilter = errors.New("invalid filter")

// Engine computes admissible index sets for filter specs.
type Engine struct {
	keywords keyword.Matcher
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithKeywordMatcher enables the keyword predicate.
func WithKeywordMatcher(m keyword.Matcher) Option {
	return func(e *Engine) { e.keywords = m }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a filter engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate rejects specs the engine cannot evaluate.
func (e *Engine) Validate(spec models.FilterSpec) error {
	if spec.Keyword != "" && e.keywords == nil {
		return fmt.Errorf("%w: keyword predicate requires a keyword index", ErrInvalidFilter)
	}
	return nil
}

// Apply returns the indices of corpus documents satisfying every predicate in spec.
// A spec without predicates yields Unrestricted in O(1).
func (e *Engine) Apply(ctx context.Context, corpus *vector.Corpus, spec models.FilterSpec) (AdmissibleSet, error) {
	spec = spec.Normalize()
	if err := e.Validate(spec); err != nil {
		return AdmissibleSet{}, err
	}
	if spec.IsEmpty() {
		return Unrestricted(), nil
	}

	set := Unrestricted()
	if spec.Keyword != "" {
		hits, err := e.keywords.Match(ctx, spec.Keyword)
		if err != nil {
			return AdmissibleSet{}, fmt.Errorf("keyword filter failed: %w", err)
		}
		set = NewAdmissibleSet(inRange(hits, corpus.Len(), e.logger))
	}
	if spec.ClassificationPrefix == "" && spec.TitleContains == "" {
		e.logDebug(spec, set)
		return set, nil
	}

	titleNeedle := strings.ToLower(spec.TitleContains)
	matched := make([]int, 0)
	for i := 0; i < corpus.Len(); i++ {
		if !set.Contains(i) {
			continue
		}
		if matches(corpus.Document(i), spec.ClassificationPrefix, titleNeedle) {
			matched = append(matched, i)
		}
	}
	set = NewAdmissibleSet(matched)
	e.logDebug(spec, set)
	return set, nil
}

// inRange drops matcher hits that do not address a corpus row, which happens when the
// keyword index was built over a different corpus.
func inRange(hits []int, n int, logger *zap.Logger) []int {
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		if h >= 0 && h < n {
			out = append(out, h)
		}
	}
	if dropped := len(hits) - len(out); dropped > 0 {
		logger.Warn("keyword hits outside the corpus dropped", zap.Int("dropped", dropped), zap.Int("corpus_size", n))
	}
	return out
}

// matches evaluates the field predicates. titleNeedle must already be lower-cased.
func matches(doc *models.Document, classificationPrefix, titleNeedle string) bool {
	if classificationPrefix != "" && !strings.HasPrefix(doc.ClassificationCode, classificationPrefix) {
		return false
	}
	if titleNeedle != "" && !strings.Contains(strings.ToLower(doc.Title), titleNeedle) {
		return false
	}
	return true
}

func (e *Engine) logDebug(spec models.FilterSpec, set AdmissibleSet) {
	e.logger.Debug("filters applied",
		zap.String("classification_prefix", spec.ClassificationPrefix),
		zap.String("title_contains", spec.TitleContains),
		zap.String("keyword", spec.Keyword),
		zap.Int("admissible", set.Len()),
	)
}
