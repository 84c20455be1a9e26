package catalog

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/econext/catalog-engine/internal/domain/product"
)

// Hash field names of a product record.
const (
	fieldName        = "name"
	fieldCategory    = "category"
	fieldTags        = "tags"
	fieldDescription = "description"
	fieldImageURL    = "image_url"
	fieldPrice       = "current_price"
)

func productToHash(p product.Product) (map[string]string, error) {
	tags := p.Tags()
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return map[string]string{
		fieldName:        p.Name(),
		fieldCategory:    p.Category(),
		fieldTags:        string(rawTags),
		fieldDescription: p.Description(),
		fieldImageURL:    p.ImageURL(),
		fieldPrice:       p.CurrentPrice().String(),
	}, nil
}

func productFromHash(id string, m map[string]string) (product.Product, error) {
	var tags []string
	if raw := m[fieldTags]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return product.Product{}, fmt.Errorf("product %s: decode tags: %w", id, err)
		}
	}
	price := decimal.Zero
	if raw := m[fieldPrice]; raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return product.Product{}, fmt.Errorf("product %s: decode price: %w", id, err)
		}
		price = d
	}
	return product.Reconstruct(
		id, m[fieldName], m[fieldCategory], tags,
		m[fieldDescription], m[fieldImageURL], price,
	), nil
}
