package ingest

import (
	"strings"

	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/pkg/utils"
)

const (
	maxDescriptionParts = 3
	maxDescriptionRunes = 1000
)

// SearchableText builds the text that is embedded for a document. The default title is left
// out; the description keeps its first three parts, capped at 1000 characters.
func SearchableText(doc *models.Document) string {
	parts := make([]string, 0, 4)
	if doc.Title != "" && doc.Title != models.DefaultTitle {
		parts = append(parts, "Title: "+doc.Title)
	}
	if doc.Abstract != "" {
		parts = append(parts, "Abstract: "+doc.Abstract)
	}
	if len(doc.Claims) > 0 {
		parts = append(parts, "Claims: "+strings.Join(doc.Claims, " "))
	}
	if len(doc.Description) > 0 {
		desc := doc.Description[:min(len(doc.Description), maxDescriptionParts)]
		parts = append(parts, "Description: "+utils.TruncateRunes(strings.Join(desc, " "), maxDescriptionRunes))
	}
	return strings.Join(parts, " ")
}
