// Package catalogengine turns catalog records and price telemetry into buy-timing
// forecasts, intent search results and visual similarity matches.
package catalogengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/db"
	"github.com/econext/catalog-engine/internal/db/memory"
	dbRedis "github.com/econext/catalog-engine/internal/db/redis"
	"github.com/econext/catalog-engine/internal/domain/product"
	"github.com/econext/catalog-engine/internal/imaging"
	logpkg "github.com/econext/catalog-engine/internal/logger"
	"github.com/econext/catalog-engine/internal/metrics"
	catalogrepo "github.com/econext/catalog-engine/internal/repository/catalog"
	featurerepo "github.com/econext/catalog-engine/internal/repository/feature"
	forecastrepo "github.com/econext/catalog-engine/internal/repository/forecast"
	chiTransport "github.com/econext/catalog-engine/internal/transport/chi"
	"github.com/econext/catalog-engine/internal/transport/imagefetch"
	forecastuc "github.com/econext/catalog-engine/internal/usecase/forecast"
	healthuc "github.com/econext/catalog-engine/internal/usecase/health"
	"github.com/econext/catalog-engine/internal/usecase/lexical"
	"github.com/econext/catalog-engine/internal/usecase/visual"
)

const defaultReadinessTimeout = 10 * time.Second

// Engine is the catalog intelligence entry point. It is safe for concurrent use.
type Engine struct {
	store     db.Store
	catalog   *catalogrepo.Repo
	features  *featurerepo.Repo
	results   *forecastrepo.Repo
	forecasts *forecastuc.Service
	lexical   *lexical.Service
	visual    *visual.Service
	health    *healthuc.Service
	server    *chiTransport.Server
}

// New creates an Engine and connects to its store.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("catalogengine: store not ready: %w", err)
	}

	return wireEngine(store, cfg), nil
}

func createStore(cfg *engineConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		if len(cfg.addrs) == 0 {
			return nil, errors.New("catalogengine: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("catalogengine: create redis store: %w", err)
		}
		return s, nil
	case "":
		return nil, errors.New("catalogengine: store required (use WithRedis or WithMemoryStore)")
	default:
		return nil, fmt.Errorf("catalogengine: unknown driver %q", cfg.driver)
	}
}

func wireEngine(store db.Store, cfg *engineConfig) *Engine {
	log := cfg.logger

	catalog := catalogrepo.New(store, cfg.keyPrefix)
	results := forecastrepo.New(store, cfg.keyPrefix).WithRetention(cfg.historyRetention)
	features := featurerepo.New(store, cfg.keyPrefix)

	fetcher := imagefetch.New(imagefetch.Config{
		Timeout:  cfg.fetchTimeout,
		MaxBytes: cfg.fetchMaxBytes,
	}, logpkg.Component(log, "imagefetch"))

	forecasts := forecastuc.New(catalog, catalog, results, forecastuc.NewForecaster(0, 0), logpkg.Component(log, "forecast")).
		WithLookback(cfg.lookbackDays)
	lex := lexical.New(catalog, logpkg.Component(log, "lexical")).
		WithLimits(cfg.maxFeatures, cfg.minSimilarity, cfg.groupTopN)
	vis := visual.New(catalog, fetcher, imaging.NewExtractor(), features, logpkg.Component(log, "visual"))

	if cfg.now != nil {
		forecasts = forecasts.WithClock(cfg.now)
		vis = vis.WithClock(cfg.now)
	}
	if cfg.metrics {
		metrics.RegisterCatalogMetrics()
		forecasts = forecasts.WithMetrics(metrics.ForecastRunsTotal)
		lex = lex.WithMetrics(metrics.LexicalRebuildsTotal, metrics.LexicalDocuments, metrics.SearchDuration)
		vis = vis.WithMetrics(metrics.VisualIndexWritesTotal, metrics.SearchDuration)
		fetcher = fetcher.WithMetrics(metrics.ImageFetchTotal)
	}

	health := healthuc.New(store, fetcher)

	return &Engine{
		store:     store,
		catalog:   catalog,
		features:  features,
		results:   results,
		forecasts: forecasts,
		lexical:   lex,
		visual:    vis,
		health:    health,
		server:    chiTransport.NewServer(forecasts, lex, vis, health, logpkg.Component(log, "http")),
	}
}

// Close releases all resources.
func (e *Engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// Ping checks store connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Handler returns the HTTP adapter over the engine's query surface.
func (e *Engine) Handler() http.Handler {
	return chiTransport.NewRouter(e.server)
}

// UpsertProduct creates or replaces a catalog product.
func (e *Engine) UpsertProduct(ctx context.Context, p Product) error {
	dp, err := product.New(p.ID, p.Name, p.Category, p.Tags, p.Description, p.ImageURL, p.CurrentPrice)
	if err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return e.catalog.UpsertProduct(ctx, dp)
}

// DeleteProduct removes a product with its price history, image descriptor and forecast history.
func (e *Engine) DeleteProduct(ctx context.Context, id string) error {
	if err := e.catalog.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if err := e.features.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete image features: %w", err)
	}
	if err := e.results.DeleteAll(ctx, id); err != nil {
		return fmt.Errorf("delete forecast history: %w", err)
	}
	return nil
}

// RecordPrice stores one observation for an existing product. A second observation
// on the same calendar day replaces the first.
func (e *Engine) RecordPrice(ctx context.Context, obs PriceObservation) error {
	return e.catalog.RecordPrice(ctx, obs.ProductID, obs.Date, obs.Price)
}

// ImportPrices stores a batch of observations without checking product existence.
func (e *Engine) ImportPrices(ctx context.Context, obs []PriceObservation) error {
	batch := make([]catalogrepo.Observation, len(obs))
	for i, o := range obs {
		batch[i] = catalogrepo.Observation{ProductID: o.ProductID, Date: o.Date, Price: o.Price}
	}
	return e.catalog.ImportPrices(ctx, batch)
}

// Predict forecasts the product's next seven days and records the run.
func (e *Engine) Predict(ctx context.Context, productID string) (Forecast, error) {
	r, err := e.forecasts.Predict(ctx, productID)
	if err != nil {
		return Forecast{}, err
	}
	return forecastFromDomain(r), nil
}

// LatestForecast returns the most recent recorded forecast.
func (e *Engine) LatestForecast(ctx context.Context, productID string) (Forecast, error) {
	r, err := e.forecasts.Latest(ctx, productID)
	if err != nil {
		return Forecast{}, err
	}
	return forecastFromDomain(r), nil
}

// ForecastHistory returns up to limit recorded forecasts, most recent first.
func (e *Engine) ForecastHistory(ctx context.Context, productID string, limit int) ([]Forecast, error) {
	runs, err := e.forecasts.History(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Forecast, len(runs))
	for i, r := range runs {
		out[i] = forecastFromDomain(r)
	}
	return out, nil
}

// SearchByText returns up to topK products matching the query, best first.
// topK <= 0 means 5.
func (e *Engine) SearchByText(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	hits, err := e.lexical.SearchByText(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	return resultsFromDomain(hits), nil
}

// SearchByCategory groups the query's hits by category.
func (e *Engine) SearchByCategory(ctx context.Context, query string) ([]CategoryGroup, error) {
	groups, err := e.lexical.GroupByCategory(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryGroup, len(groups))
	for i, g := range groups {
		out[i] = CategoryGroup{Category: g.Category, Results: resultsFromDomain(g.Results)}
	}
	return out, nil
}

// ExpandIntent maps a shopping intent ("gym", "beach") to related product keywords.
func (e *Engine) ExpandIntent(query string) []string {
	return lexical.ExpandIntent(query)
}

// SearchByImage ranks indexed products by visual similarity to the image. topK <= 0 means 5.
func (e *Engine) SearchByImage(ctx context.Context, data []byte, topK int) ([]VisualMatch, error) {
	matches, err := e.visual.Search(ctx, data, topK)
	if err != nil {
		return nil, err
	}
	out := make([]VisualMatch, len(matches))
	for i, m := range matches {
		out[i] = VisualMatch{ProductID: m.ProductID, Similarity: m.Similarity}
	}
	return out, nil
}

// IndexProductImage downloads the product's image and stores its descriptor.
// Re-indexing an unchanged image is a no-op.
func (e *Engine) IndexProductImage(ctx context.Context, productID string) (ImageFeatures, error) {
	rec, err := e.visual.Index(ctx, productID)
	if err != nil {
		return ImageFeatures{}, err
	}
	return ImageFeatures{
		ProductID: rec.ProductID(), Hash: rec.Hash(),
		Dimensions: len(rec.Vector()), ProcessedAt: rec.ProcessedAt(),
	}, nil
}

// IndexImage stores the descriptor of already downloaded image bytes for a product.
func (e *Engine) IndexImage(ctx context.Context, productID string, data []byte) (ImageFeatures, error) {
	rec, err := e.visual.IndexImage(ctx, productID, data)
	if err != nil {
		return ImageFeatures{}, err
	}
	return ImageFeatures{
		ProductID: rec.ProductID(), Hash: rec.Hash(),
		Dimensions: len(rec.Vector()), ProcessedAt: rec.ProcessedAt(),
	}, nil
}

// Health reports store reachability and the image fetch breaker state.
func (e *Engine) Health(ctx context.Context) HealthReport {
	r := e.health.Check(ctx)
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthReport{Status: string(r.Status), Checks: checks}
}
