package ingest

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Field aliases, matched case-insensitively. The first alias present with a non-empty
// value wins.
var (
	idKeys = []string{
		"document number", "document_number", "doc_number", "docnumber",
		"publication_number", "application_number", "patent_id", "id",
	}
	titleKeys          = []string{"title"}
	abstractKeys       = []string{"abstract"}
	claimsKeys         = []string{"claims"}
	descriptionKeys    = []string{"detailed_description", "detailed description", "description"}
	classificationKeys = []string{"classification code", "classification_code", "classification"}
	citationKeys       = []string{"bibtext citation", "bibtext_citation", "bibtex"}
)

// record is one raw patent object with lower-cased keys.
type record map[string]any

// newRecord lower-cases keys. Keys that collide after lower-casing are applied in sorted
// order, so the last one in byte order wins ("title" over "Title").
func newRecord(raw map[string]any) record {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	r := make(record, len(raw))
	for _, k := range keys {
		r[strings.ToLower(strings.TrimSpace(k))] = raw[k]
	}
	return r
}

// pick returns the first alias whose value is present and not empty.
func (r record) pick(keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if ok && !isEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

// str returns the picked value as a string, or def when absent.
func (r record) str(keys []string, def string) string {
	v, ok := r.pick(keys)
	if !ok {
		return def
	}
	s := stringify(v)
	if s == "" {
		return def
	}
	return s
}

// list returns the picked value as a list of strings. A scalar becomes a one-element list.
func (r record) list(keys []string) []string {
	v, ok := r.pick(keys)
	if !ok {
		return nil
	}
	items, isList := v.([]any)
	if !isList {
		return []string{stringify(v)}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringify(item))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
