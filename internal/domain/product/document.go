package product

import "strings"

// Document is the text projection of a product used for lexical indexing. Never persisted.
type Document struct {
	ProductID string
	Text      string
}

// BuildDocument joins name, category and tags into a single indexable text.
// Description is left out: it is long free text and drowns the intent tags.
func BuildDocument(p Product) Document {
	parts := make([]string, 0, 2+len(p.tags))
	parts = append(parts, strings.TrimSpace(p.name), strings.TrimSpace(p.category))
	for _, t := range p.tags {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return Document{ProductID: p.id, Text: strings.Join(parts, " ")}
}
