package product

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Product is a read-only catalog snapshot of one product (immutable value object).
type Product struct {
	id           string
	name         string
	category     string
	tags         []string
	description  string
	imageURL     string
	currentPrice decimal.Decimal
}

// New validates and creates a Product.
// ID: ^[a-zA-Z0-9_-]+$, 1-128 chars. Name is required, price must not be negative.
func New(
	id, name, category string, tags []string,
	description, imageURL string, currentPrice decimal.Decimal,
) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("product ID is required")
	}
	if len(id) > 128 {
		return Product{}, fmt.Errorf("product ID too long (max 128)")
	}
	if !idRegex.MatchString(id) {
		return Product{}, fmt.Errorf("product ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(name) == "" {
		return Product{}, fmt.Errorf("product name is required")
	}
	if currentPrice.IsNegative() {
		return Product{}, fmt.Errorf("current price must not be negative")
	}
	return Reconstruct(id, name, category, tags, description, imageURL, currentPrice), nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(
	id, name, category string, tags []string,
	description, imageURL string, currentPrice decimal.Decimal,
) Product {
	return Product{
		id: id, name: name, category: category, tags: cloneTags(tags),
		description: description, imageURL: imageURL, currentPrice: currentPrice,
	}
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Name returns the display name.
func (p *Product) Name() string { return p.name }

// Category returns the category name.
func (p *Product) Category() string { return p.category }

// Tags returns the intent tags.
func (p *Product) Tags() []string { return p.tags }

// Description returns the long description.
func (p *Product) Description() string { return p.description }

// ImageURL returns the image locator, empty when the product has no image.
func (p *Product) ImageURL() string { return p.imageURL }

// CurrentPrice returns the current list price.
func (p *Product) CurrentPrice() decimal.Decimal { return p.currentPrice }

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
