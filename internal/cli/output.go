// Package cli renders search results, documents and corpus statistics for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// AbstractPreviewLen is the number of characters of abstract shown per text result.
const AbstractPreviewLen = 200

const rule = "============================================================"

// ParseOutputFormat maps a flag value to an OutputFormat. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

// WriteSearchResults writes a search response to w in the given format.
// showAbstracts adds an abstract preview to each text result.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat, showAbstracts bool) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response, showAbstracts)
	return nil
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse, showAbstracts bool) {
	if len(response.Results) == 0 {
		fmt.Fprintln(w, "\nNo results found. Try a different query.")
		return
	}
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "SEARCH RESULTS (%d found)\n", len(response.Results))
	fmt.Fprintln(w, rule)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result, showAbstracts)
	}
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Search completed in %dms\n", response.QueryTime)
	if avg := response.Statistics.Avg; avg != nil {
		fmt.Fprintf(w, "Average similarity: %.4f\n", *avg)
	}
}

func writeOneResult(w io.Writer, n int, result *models.SearchResult, showAbstract bool) {
	doc := result.Document
	fmt.Fprintf(w, "\n[%d] %s\n", n, doc.Title)
	fmt.Fprintf(w, "    Relevance Score: %.4f\n", result.Score)
	fmt.Fprintf(w, "    Document Number: %s\n", doc.ID)
	fmt.Fprintf(w, "    Classification: %s\n", doc.ClassificationCode)
	if showAbstract && doc.Abstract != "" {
		fmt.Fprintf(w, "    Abstract: %s\n", utils.Truncate(doc.Abstract, AbstractPreviewLen))
	}
}

// WriteDocument writes a single document to w.
func WriteDocument(w io.Writer, doc *models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, doc)
	}
	fmt.Fprintf(w, "%s\n", doc.Title)
	fmt.Fprintf(w, "Document Number: %s\n", doc.ID)
	fmt.Fprintf(w, "Classification: %s\n", doc.ClassificationCode)
	if doc.Citation != "" && doc.Citation != models.DefaultCitation {
		fmt.Fprintf(w, "Citation: %s\n", doc.Citation)
	}
	if doc.Abstract != "" {
		fmt.Fprintf(w, "\n%s\n", doc.Abstract)
	}
	if len(doc.Claims) > 0 {
		fmt.Fprintf(w, "\nClaims (%d):\n", len(doc.Claims))
		for _, c := range doc.Claims {
			fmt.Fprintf(w, "  %s\n", utils.Truncate(c, AbstractPreviewLen))
		}
	}
	return nil
}

// WriteCorpusStats writes corpus coverage counts to w.
func WriteCorpusStats(w io.Writer, stats models.CorpusStats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	fmt.Fprintln(w, "Dataset Statistics:")
	fmt.Fprintf(w, "  Total patents: %d\n", stats.Total)
	fmt.Fprintf(w, "  With abstract: %d\n", stats.WithAbstract)
	fmt.Fprintf(w, "  With claims: %d\n", stats.WithClaims)
	fmt.Fprintf(w, "  Missing abstract: %d\n", stats.MissingAbstract)
	fmt.Fprintf(w, "  Missing claims: %d\n", stats.MissingClaims)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
