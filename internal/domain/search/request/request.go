package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/econext/catalog-engine/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in characters.
	MaxQueryLength = 256
	DefaultTopK    = 5
	MaxTopK        = 100
)

// Request is a validated text search query.
type Request struct {
	query string
	topK  int
}

// New validates and normalizes search parameters.
// The query is trimmed; topK <= 0 falls back to DefaultTopK and is clamped to MaxTopK.
func New(query string, topK int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	return Request{query: query, topK: NormalizeTopK(topK)}, nil
}

// NormalizeTopK applies the default and the upper bound to a requested result count.
func NormalizeTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of results to return.
func (r *Request) TopK() int { return r.topK }
