// Package forecast persists forecast runs as an append-only history per product.
package forecast

import (
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-json"

	"github.com/econext/catalog-engine/internal/domain"
	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
)

// DefaultRetention is the number of runs kept per product.
const DefaultRetention = 100

// store is the consumer interface for forecast history (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/forecast.ResultStore.
type Repo struct {
	store     store
	prefix    string
	retention int
}

// New creates a forecast history repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix, retention: DefaultRetention}
}

// WithRetention caps the stored runs per product; older runs are pruned on save.
func (r *Repo) WithRetention(n int) *Repo {
	if n > 0 {
		r.retention = n
	}
	return r
}

func (r *Repo) key(productID string) string { return r.prefix + "forecast:" + productID }

// runKey sorts lexicographically in creation order.
func runKey(res domforecast.Result) string {
	return fmt.Sprintf("%020d:%s", res.CreatedAt.UnixNano(), res.RunID)
}

// Save appends a run and prunes the history beyond the retention limit.
func (r *Repo) Save(ctx context.Context, res domforecast.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}
	key := r.key(res.ProductID)
	if err := r.store.HSet(ctx, key, map[string]string{runKey(res): string(data)}); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) <= r.retention {
		return nil
	}
	runs := sortedRuns(m)
	stale := runs[:len(runs)-r.retention]
	if err := r.store.HDel(ctx, key, stale...); err != nil {
		return fmt.Errorf("prune %s: %w", key, err)
	}
	return nil
}

// Latest returns the most recent run.
func (r *Repo) Latest(ctx context.Context, productID string) (domforecast.Result, error) {
	out, err := r.History(ctx, productID, 1)
	if err != nil {
		return domforecast.Result{}, err
	}
	if len(out) == 0 {
		return domforecast.Result{}, fmt.Errorf("forecast for %s: %w", productID, domain.ErrNotFound)
	}
	return out[0], nil
}

// History returns up to limit runs, most recent first.
func (r *Repo) History(ctx context.Context, productID string, limit int) ([]domforecast.Result, error) {
	key := r.key(productID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}

	runs := sortedRuns(m)
	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	out := make([]domforecast.Result, 0, len(runs))
	for _, k := range runs {
		var res domforecast.Result
		if err := json.Unmarshal([]byte(m[k]), &res); err != nil {
			return nil, fmt.Errorf("decode forecast run %s: %w", k, err)
		}
		if _, err := domforecast.Parse(string(res.Recommend)); err != nil {
			return nil, fmt.Errorf("decode forecast run %s: %w", k, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// DeleteAll drops every recorded run of a product.
func (r *Repo) DeleteAll(ctx context.Context, productID string) error {
	key := r.key(productID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func sortedRuns(m map[string]string) []string {
	runs := make([]string, 0, len(m))
	for k := range m {
		runs = append(runs, k)
	}
	slices.Sort(runs)
	return runs
}
