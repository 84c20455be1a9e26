package product

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNew_Valid(t *testing.T) {
	p, err := New("sku-1", "Solar Power Bank", "Electronics",
		[]string{"solar", "power bank"}, "desc", "https://img/1.png", decimal.RequireFromString("19.99"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() != "sku-1" || p.Name() != "Solar Power Bank" || p.Category() != "Electronics" {
		t.Errorf("unexpected product: %+v", p)
	}
	if !p.CurrentPrice().Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("CurrentPrice() = %s", p.CurrentPrice())
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		pname string
		price string
	}{
		{"empty id", "", "x", "1"},
		{"bad id", "a b", "x", "1"},
		{"long id", strings.Repeat("a", 129), "x", "1"},
		{"blank name", "ok", "   ", "1"},
		{"negative price", "ok", "x", "-1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.id, tc.pname, "", nil, "", "", decimal.RequireFromString(tc.price))
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReconstruct_CopiesTags(t *testing.T) {
	tags := []string{"a", "b"}
	p := Reconstruct("id", "n", "c", tags, "", "", decimal.Zero)
	tags[0] = "mutated"
	if p.Tags()[0] != "a" {
		t.Errorf("tags aliased caller slice: %v", p.Tags())
	}
}

func TestBuildDocument(t *testing.T) {
	p := Reconstruct("sku-1", " Solar Power Bank ", "Electronics",
		[]string{"solar", " ", "power bank", "charging"}, "long description", "", decimal.Zero)

	doc := BuildDocument(p)
	if doc.ProductID != "sku-1" {
		t.Errorf("ProductID = %q", doc.ProductID)
	}
	want := "Solar Power Bank Electronics solar power bank charging"
	if doc.Text != want {
		t.Errorf("Text = %q, want %q", doc.Text, want)
	}
}
