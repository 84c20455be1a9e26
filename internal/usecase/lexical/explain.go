package lexical

import (
	"strings"

	"github.com/econext/catalog-engine/internal/domain/product"
)

// Explain describes why p matched query. Presentation only; never feeds ranking.
func Explain(query string, p product.Product) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(strings.ToLower(p.Name()), q) {
		return "direct name match"
	}
	for _, tag := range p.Tags() {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if strings.Contains(t, q) || strings.Contains(q, t) {
			return "tag match: " + query
		}
	}
	if p.Category() != "" && strings.Contains(strings.ToLower(p.Category()), q) {
		return "category match"
	}
	return "related to " + query
}
