// Package ingest loads patent JSON files into normalized documents.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/models"
)

// DefaultPattern matches the weekly patent application dumps.
const DefaultPattern = "patents_ipa*.json"

// ErrNoFiles is returned when the data folder has no file matching the pattern.
var ErrNoFiles = errors.New("no patent files found")

// Report describes the outcome of a Load.
type Report struct {
	Files     []string          `json:"files"`
	Skipped   map[string]string `json:"skipped,omitempty"` // file -> error
	Documents int               `json:"documents"`
}

// Loader reads patent files from a folder.
type Loader struct {
	folder  string
	pattern string
	ids     IDGenerator
	logger  *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPattern sets the glob matched against file names in the folder.
func WithPattern(p string) Option {
	return func(l *Loader) { l.pattern = p }
}

// WithIDGenerator sets how missing document ids are filled in.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Loader) { l.ids = g }
}

// WithLogger sets a logger for per-file progress and skipped files.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// NewLoader creates a loader for folder.
func NewLoader(folder string, opts ...Option) *Loader {
	l := &Loader{folder: folder, pattern: DefaultPattern, ids: SequenceIDs{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses every matching file in name order. A file that cannot be read or parsed is
// logged, recorded in the report, and skipped.
func (l *Loader) Load(ctx context.Context) ([]*models.Document, *Report, error) {
	files, err := filepath.Glob(filepath.Join(l.folder, l.pattern))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid pattern %q: %w", l.pattern, err)
	}
	sort.Strings(files)
	report := &Report{Files: files, Skipped: map[string]string{}}
	if len(files) == 0 {
		return nil, report, fmt.Errorf("%w in %s matching %s", ErrNoFiles, l.folder, l.pattern)
	}

	docs := make([]*models.Document, 0)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		batch, err := l.loadFile(path, len(docs))
		if err != nil {
			l.logger.Warn("skipping patent file", zap.String("file", path), zap.Error(err))
			report.Skipped[path] = err.Error()
			continue
		}
		docs = append(docs, batch...)
		l.logger.Info("loaded patent file",
			zap.String("file", filepath.Base(path)),
			zap.Int("patents", len(batch)),
			zap.Int("total", len(docs)),
		)
	}
	report.Documents = len(docs)
	return docs, report, nil
}

func (l *Loader) loadFile(path string, firstOrdinal int) ([]*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, firstOrdinal, l.ids)
}

// Parse decodes a JSON array of patent objects. firstOrdinal is the corpus position of the
// first record, used by ids for records without an id.
func Parse(r io.Reader, firstOrdinal int, ids IDGenerator) ([]*models.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode patents: %w", err)
	}
	docs := make([]*models.Document, 0, len(raw))
	for i, obj := range raw {
		docs = append(docs, Normalize(obj, firstOrdinal+i, ids))
	}
	return docs, nil
}

// Normalize maps one raw record onto a Document, filling defaults and searchable text.
func Normalize(raw map[string]any, ordinal int, ids IDGenerator) *models.Document {
	r := newRecord(raw)
	doc := &models.Document{
		Title:              collapseSpace(r.str(titleKeys, models.DefaultTitle)),
		Abstract:           r.str(abstractKeys, ""),
		Claims:             r.list(claimsKeys),
		Description:        r.list(descriptionKeys),
		ClassificationCode: r.str(classificationKeys, models.DefaultClassification),
		Citation:           r.str(citationKeys, models.DefaultCitation),
	}
	if doc.Title == "" {
		doc.Title = models.DefaultTitle
	}
	doc.ID = collapseSpace(r.str(idKeys, ""))
	if doc.ID == "" {
		doc.ID = ids.NextID(doc, ordinal)
	}
	doc.SearchableText = SearchableText(doc)
	return doc
}
