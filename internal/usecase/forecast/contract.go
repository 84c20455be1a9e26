package forecast

import (
	"context"

	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
	"github.com/econext/catalog-engine/internal/domain/price"
	"github.com/econext/catalog-engine/internal/domain/product"
)

// ProductReader loads catalog products.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

// PriceReader loads the recorded daily prices of a product, in any order.
type PriceReader interface {
	ListPrices(ctx context.Context, productID string) ([]price.Point, error)
}

// ResultStore persists forecast runs as an append-only history.
type ResultStore interface {
	Save(ctx context.Context, r domforecast.Result) error
	Latest(ctx context.Context, productID string) (domforecast.Result, error)
	History(ctx context.Context, productID string, limit int) ([]domforecast.Result, error)
}
