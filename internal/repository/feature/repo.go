// Package feature stores one image descriptor per product.
package feature

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/econext/catalog-engine/internal/domain"
	domfeature "github.com/econext/catalog-engine/internal/domain/feature"
)

const (
	fieldVector      = "vector"
	fieldHash        = "hash"
	fieldProcessedAt = "processed_at"
)

// store is the consumer interface for image features (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Counter(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo implements usecase/visual.FeatureStore. Every write bumps the feature version.
type Repo struct {
	store  store
	prefix string
}

// New creates an image feature repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(productID string) string { return r.prefix + "imgfeat:" + productID }
func (r *Repo) versionKey() string          { return r.prefix + "imgfeat_version" }

// Put replaces the descriptor of a product.
func (r *Repo) Put(ctx context.Context, rec domfeature.Record) error {
	key := r.key(rec.ProductID())
	fields := map[string]string{
		fieldVector:      string(rec.Vector().Bytes()), // little-endian float32, 4 bytes per component
		fieldHash:        rec.Hash(),
		fieldProcessedAt: rec.ProcessedAt().UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if _, err := r.store.IncrBy(ctx, r.versionKey(), 1); err != nil {
		return fmt.Errorf("bump feature version: %w", err)
	}
	return nil
}

// Delete drops the descriptor of a product. The version is bumped only when one existed.
func (r *Repo) Delete(ctx context.Context, productID string) error {
	key := r.key(productID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return nil
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if _, err := r.store.IncrBy(ctx, r.versionKey(), 1); err != nil {
		return fmt.Errorf("bump feature version: %w", err)
	}
	return nil
}

// Get returns the stored descriptor of a product.
func (r *Repo) Get(ctx context.Context, productID string) (domfeature.Record, error) {
	key := r.key(productID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domfeature.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domfeature.Record{}, fmt.Errorf("features of %s: %w", productID, domain.ErrNotFound)
	}
	return parseRecord(productID, m)
}

// List returns every stored descriptor.
func (r *Repo) List(ctx context.Context) ([]domfeature.Record, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan features: %w", err)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	out := make([]domfeature.Record, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		rec, err := parseRecord(strings.TrimPrefix(keys[i], r.key("")), m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Version returns the feature write counter. A fresh store reports 0.
func (r *Repo) Version(ctx context.Context) (int64, error) {
	v, err := r.store.Counter(ctx, r.versionKey())
	if err != nil {
		return 0, fmt.Errorf("get feature version: %w", err)
	}
	return v, nil
}

func parseRecord(productID string, m map[string]string) (domfeature.Record, error) {
	vec, err := domfeature.FromBytes([]byte(m[fieldVector]))
	if err != nil {
		return domfeature.Record{}, fmt.Errorf("features of %s: %w", productID, err)
	}
	var processedAt time.Time
	if s := m[fieldProcessedAt]; s != "" {
		if processedAt, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return domfeature.Record{}, fmt.Errorf("features of %s: decode processed_at: %w", productID, err)
		}
	}
	return domfeature.Reconstruct(productID, vec, m[fieldHash], processedAt), nil
}
