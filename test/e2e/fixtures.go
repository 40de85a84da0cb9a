package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Layout is a key naming scheme seen in patent JSON exports.
type Layout string

const (
	// LayoutSnake uses lower snake_case keys.
	LayoutSnake Layout = "snake"
	// LayoutTitled uses space-separated title-case keys.
	LayoutTitled Layout = "titled"
	// LayoutPublication names the id publication_number and nests nothing else.
	LayoutPublication Layout = "publication"
)

// SupportedLayouts lists the layouts written by WriteCorpusFiles.
var SupportedLayouts = []Layout{LayoutSnake, LayoutTitled, LayoutPublication}

// Record renders p as a raw JSON object in the given layout.
func Record(p Patent, layout Layout) map[string]any {
	switch layout {
	case LayoutTitled:
		return map[string]any{
			"Document Number":     p.ID,
			"Title":               p.Title,
			"Abstract":            p.Abstract,
			"Claims":              p.Claims,
			"Classification Code": p.Classification,
		}
	case LayoutPublication:
		return map[string]any{
			"publication_number": p.ID,
			"title":              p.Title,
			"abstract":           p.Abstract,
			"claims":             p.Claims,
			"classification":     p.Classification,
		}
	default:
		return map[string]any{
			"document_number":     p.ID,
			"title":               p.Title,
			"abstract":            p.Abstract,
			"claims":              p.Claims,
			"classification_code": p.Classification,
		}
	}
}

// WriteCorpusFiles spreads the corpus over one patents_ipa*.json file per layout, in order,
// so that loading the files by name reproduces corpus order. It returns the written paths.
func WriteCorpusFiles(dir string, c *Corpus) ([]string, error) {
	per := (len(c.Patents) + len(SupportedLayouts) - 1) / len(SupportedLayouts)
	var paths []string
	for i, layout := range SupportedLayouts {
		start := i * per
		if start >= len(c.Patents) {
			break
		}
		end := min(start+per, len(c.Patents))
		records := make([]map[string]any, 0, end-start)
		for _, p := range c.Patents[start:end] {
			records = append(records, Record(p, layout))
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, fmt.Sprintf("patents_ipa%02d_%s.json", i, layout))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
