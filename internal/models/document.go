// Package models defines core data structures for patent documents, filters, and search results.
package models

// Default field values substituted during ingestion when a source record omits them.
const (
	DefaultTitle          = "No Title Available"
	DefaultClassification = "N/A"
	DefaultCitation       = "N/A"
)

// Document is a canonical patent record. It is never mutated once part of a corpus.
type Document struct {
	ID                 string   `json:"document_number" db:"id"`
	Title              string   `json:"title" db:"title"`
	Abstract           string   `json:"abstract" db:"abstract"`
	Claims             []string `json:"claims,omitempty" db:"claims"`
	Description        []string `json:"detailed_description,omitempty" db:"description"`
	ClassificationCode string   `json:"classification_code" db:"classification_code"`
	Citation           string   `json:"bibtext_citation,omitempty" db:"citation"`
	SearchableText     string   `json:"searchable_text,omitempty" db:"searchable_text"`
}

// Clone returns a deep copy so callers can hold results without aliasing corpus memory.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Claims != nil {
		c.Claims = append([]string(nil), d.Claims...)
	}
	if d.Description != nil {
		c.Description = append([]string(nil), d.Description...)
	}
	return &c
}

// HasAbstract reports whether the abstract is non-empty.
func (d *Document) HasAbstract() bool { return d.Abstract != "" }

// HasClaims reports whether the document carries at least one claim.
func (d *Document) HasClaims() bool { return len(d.Claims) > 0 }

// CorpusStats summarizes field coverage across a loaded corpus.
type CorpusStats struct {
	Total           int `json:"total_patents"`
	WithAbstract    int `json:"with_abstract"`
	WithClaims      int `json:"with_claims"`
	MissingAbstract int `json:"missing_abstract"`
	MissingClaims   int `json:"missing_claims"`
}

// ComputeCorpusStats counts abstract and claim coverage over docs.
func ComputeCorpusStats(docs []*Document) CorpusStats {
	s := CorpusStats{Total: len(docs)}
	for _, d := range docs {
		if d.HasAbstract() {
			s.WithAbstract++
		}
		if d.HasClaims() {
			s.WithClaims++
		}
	}
	s.MissingAbstract = s.Total - s.WithAbstract
	s.MissingClaims = s.Total - s.WithClaims
	return s
}
