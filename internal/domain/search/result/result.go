package result

import "sort"

// Result is a single lexical search hit.
type Result struct {
	productID   string
	name        string
	category    string
	score       float64
	explanation string
}

// New creates a search result.
func New(productID, name, category string, score float64, explanation string) Result {
	return Result{
		productID: productID, name: name, category: category,
		score: score, explanation: explanation,
	}
}

// ProductID returns the matched product.
func (r *Result) ProductID() string { return r.productID }

// Name returns the product name at query time.
func (r *Result) Name() string { return r.name }

// Category returns the product category at query time.
func (r *Result) Category() string { return r.category }

// Score returns the cosine similarity in [0,1].
func (r *Result) Score() float64 { return r.score }

// Explanation returns a human-readable reason for the match. Presentation only.
func (r *Result) Explanation() string { return r.explanation }

// VisualMatch is a single image similarity hit.
type VisualMatch struct {
	ProductID  string
	Similarity float64
}

// CategoryGroup holds the hits of one category, best first.
type CategoryGroup struct {
	Category string
	Results  []Result
}

// GroupByCategory partitions ranked results by category.
// Groups are ordered by first appearance, so for ranked input the group holding the best hit
// comes first. Results inside a group are sorted by score descending (stable).
func GroupByCategory(results []Result) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[string]int)
	for _, r := range results {
		i, ok := index[r.category]
		if !ok {
			i = len(groups)
			index[r.category] = i
			groups = append(groups, CategoryGroup{Category: r.category})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	for _, g := range groups {
		sort.SliceStable(g.Results, func(a, b int) bool {
			return g.Results[a].score > g.Results[b].score
		})
	}
	return groups
}

// Total counts the results across all groups.
func Total(groups []CategoryGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Results)
	}
	return n
}
