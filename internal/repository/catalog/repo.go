// Package catalog stores products and their daily price history.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/econext/catalog-engine/internal/db"
	"github.com/econext/catalog-engine/internal/domain"
	"github.com/econext/catalog-engine/internal/domain/price"
	"github.com/econext/catalog-engine/internal/domain/product"
)

// store is the consumer interface for the catalog (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	ReplaceHash(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Counter(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Observation is one externally recorded daily price of a product.
type Observation struct {
	ProductID string
	Date      time.Time
	Price     decimal.Decimal
}

// Repo implements the catalog readers of the forecast, lexical and visual usecases.
// Every product mutation bumps the catalog version.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) productKey(id string) string { return r.prefix + "product:" + id }
func (r *Repo) pricesKey(id string) string  { return r.prefix + "prices:" + id }
func (r *Repo) versionKey() string          { return r.prefix + "version" }

// UpsertProduct creates or replaces a product.
func (r *Repo) UpsertProduct(ctx context.Context, p product.Product) error {
	fields, err := productToHash(p)
	if err != nil {
		return err
	}
	key := r.productKey(p.ID())
	if err := r.store.ReplaceHash(ctx, key, fields); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return r.bump(ctx)
}

// DeleteProduct removes a product and its price history.
func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	key := r.productKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.Del(ctx, r.pricesKey(id)); err != nil {
		return fmt.Errorf("del prices %s: %w", id, err)
	}
	return r.bump(ctx)
}

// GetProduct returns a product by ID.
func (r *Repo) GetProduct(ctx context.Context, id string) (product.Product, error) {
	key := r.productKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return product.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return product.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return productFromHash(id, m)
}

// ListProducts returns the whole catalog ordered by product ID.
func (r *Repo) ListProducts(ctx context.Context) ([]product.Product, error) {
	keys, err := r.store.Scan(ctx, r.productKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	slices.Sort(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	out := make([]product.Product, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		p, err := productFromHash(strings.TrimPrefix(keys[i], r.productKey("")), m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Version returns the catalog mutation counter. A fresh store reports 0.
func (r *Repo) Version(ctx context.Context) (int64, error) {
	v, err := r.store.Counter(ctx, r.versionKey())
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

func (r *Repo) bump(ctx context.Context) error {
	if _, err := r.store.IncrBy(ctx, r.versionKey(), 1); err != nil {
		return fmt.Errorf("bump catalog version: %w", err)
	}
	return nil
}

// RecordPrice stores one daily price of an existing product. A second observation
// for the same day replaces the first.
func (r *Repo) RecordPrice(ctx context.Context, productID string, date time.Time, value decimal.Decimal) error {
	pt, err := price.NewPoint(date, value)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidPrice, err)
	}
	exists, err := r.store.Exists(ctx, r.productKey(productID))
	if err != nil {
		return fmt.Errorf("check exists %s: %w", productID, err)
	}
	if !exists {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	key := r.pricesKey(productID)
	if err := r.store.HSet(ctx, key, map[string]string{pt.Date.Format(price.DateLayout): pt.Price.String()}); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// ImportPrices stores a batch of observations in one round-trip, grouped per product.
// Products are not checked for existence.
func (r *Repo) ImportPrices(ctx context.Context, obs []Observation) error {
	byProduct := make(map[string]map[string]string)
	order := make([]string, 0)
	for _, o := range obs {
		pt, err := price.NewPoint(o.Date, o.Price)
		if err != nil {
			return fmt.Errorf("%w: product %s: %w", domain.ErrInvalidPrice, o.ProductID, err)
		}
		fields, ok := byProduct[o.ProductID]
		if !ok {
			fields = make(map[string]string)
			byProduct[o.ProductID] = fields
			order = append(order, o.ProductID)
		}
		fields[pt.Date.Format(price.DateLayout)] = pt.Price.String()
	}

	items := make([]db.HashSetItem, 0, len(order))
	for _, id := range order {
		items = append(items, db.HashSetItem{Key: r.pricesKey(id), Fields: byProduct[id]})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("import prices: %w", err)
	}
	return nil
}

// ListPrices returns a product's stored observations in chronological order.
func (r *Repo) ListPrices(ctx context.Context, productID string) ([]price.Point, error) {
	key := r.pricesKey(productID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}

	out := make([]price.Point, 0, len(m))
	for day, raw := range m {
		date, err := time.Parse(price.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s: bad date %q", domain.ErrInvalidSeries, productID, day)
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s: bad price %q", domain.ErrInvalidSeries, productID, raw)
		}
		out = append(out, price.Point{Date: date, Price: value})
	}
	slices.SortFunc(out, func(a, b price.Point) int { return a.Date.Compare(b.Date) })
	return out, nil
}
