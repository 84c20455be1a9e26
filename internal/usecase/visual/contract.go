package visual

import (
	"context"

	"github.com/econext/catalog-engine/internal/domain/feature"
	"github.com/econext/catalog-engine/internal/domain/product"
)

// ProductReader loads a catalog product.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

// ImageFetcher downloads image bytes from a locator.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor computes a descriptor from image bytes.
type Extractor interface {
	Extract(data []byte) (feature.Vector, error)
}

// FeatureStore persists one descriptor per product and counts writes.
type FeatureStore interface {
	Get(ctx context.Context, productID string) (feature.Record, error)
	Put(ctx context.Context, rec feature.Record) error
	List(ctx context.Context) ([]feature.Record, error)
	Version(ctx context.Context) (int64, error)
}
