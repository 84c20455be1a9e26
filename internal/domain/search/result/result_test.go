package result

import "testing"

func TestNew(t *testing.T) {
	r := New("sku-1", "Solar Power Bank", "Electronics", 0.42, "tag match: solar")

	if r.ProductID() != "sku-1" {
		t.Errorf("ProductID() = %q", r.ProductID())
	}
	if r.Name() != "Solar Power Bank" {
		t.Errorf("Name() = %q", r.Name())
	}
	if r.Category() != "Electronics" {
		t.Errorf("Category() = %q", r.Category())
	}
	if r.Score() != 0.42 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Explanation() != "tag match: solar" {
		t.Errorf("Explanation() = %q", r.Explanation())
	}
}

func TestGroupByCategory(t *testing.T) {
	in := []Result{
		New("a", "A", "Sports", 0.9, ""),
		New("b", "B", "Kitchen", 0.8, ""),
		New("c", "C", "Sports", 0.7, ""),
		New("d", "D", "Kitchen", 0.3, ""),
		New("e", "E", "Travel", 0.2, ""),
	}

	groups := GroupByCategory(in)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	wantOrder := []string{"Sports", "Kitchen", "Travel"}
	for i, g := range groups {
		if g.Category != wantOrder[i] {
			t.Errorf("group %d = %q, want %q", i, g.Category, wantOrder[i])
		}
		for j := 1; j < len(g.Results); j++ {
			if g.Results[j].Score() > g.Results[j-1].Score() {
				t.Errorf("group %q not sorted desc", g.Category)
			}
		}
	}
	if Total(groups) != len(in) {
		t.Errorf("Total() = %d, want %d", Total(groups), len(in))
	}
}

func TestGroupByCategory_Empty(t *testing.T) {
	groups := GroupByCategory(nil)
	if groups == nil || len(groups) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", groups)
	}
}

func TestGroupByCategory_SortsWithinGroup(t *testing.T) {
	in := []Result{
		New("a", "A", "Sports", 0.2, ""),
		New("b", "B", "Sports", 0.9, ""),
	}
	groups := GroupByCategory(in)
	if groups[0].Results[0].ProductID() != "b" {
		t.Errorf("expected b first, got %s", groups[0].Results[0].ProductID())
	}
}
