package lexical

import "strings"

type intent struct {
	keyword string
	tags    []string
}

var intents = []intent{
	{"gym", []string{"gym shoes", "water bottle", "yoga mat", "dumbbells", "athlete"}},
	{"office", []string{"desk", "chair", "stationery", "monitor", "laptop"}},
	{"cooking", []string{"knife", "pan", "spoon", "cutting board", "apron"}},
	{"travel", []string{"luggage", "backpack", "pillow", "passport holder"}},
	{"beach", []string{"swimsuit", "sunscreen", "flip flops", "beach bag", "sunglasses"}},
}

// ExpandIntent returns the tags of every known intent mentioned in query, in a fixed order.
// A query naming no intent expands to itself.
func ExpandIntent(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []string
	for _, in := range intents {
		if strings.Contains(q, in.keyword) {
			out = append(out, in.tags...)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(query)}
	}
	return out
}
