package lexical

import (
	"context"

	"github.com/econext/catalog-engine/internal/domain/product"
)

// CatalogReader lists the catalog and reports its mutation counter.
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	Version(ctx context.Context) (int64, error)
}
