package lexical

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/domain"
	"github.com/econext/catalog-engine/internal/domain/product"
	"github.com/econext/catalog-engine/internal/domain/search/request"
	"github.com/econext/catalog-engine/internal/domain/search/result"
	"github.com/econext/catalog-engine/internal/logger"
	"github.com/econext/catalog-engine/internal/snapshot"
)

// index pairs a fitted model with the products its rows were built from.
type index struct {
	products []product.Product
	model    *Model
}

// Service answers intent queries against a model rebuilt whenever the catalog version moves.
type Service struct {
	catalog       CatalogReader
	holder        *snapshot.Holder[*index]
	maxFeatures   int
	minSimilarity float64
	groupTopN     int

	rebuilds  prometheus.Counter
	documents prometheus.Gauge
	duration  *prometheus.HistogramVec
	log       *zap.Logger
}

// New creates a lexical search service with the default vocabulary cap and relevance floor.
func New(catalog CatalogReader, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := domain.DefaultEngineConfig()
	s := &Service{
		catalog:       catalog,
		maxFeatures:   cfg.MaxVocabularyTerms,
		minSimilarity: cfg.MinLexicalSimilarity,
		groupTopN:     cfg.CategoryGroupTopN,
		log:           log,
	}
	s.holder = snapshot.New(s.build)
	return s
}

// WithLimits overrides the vocabulary cap, relevance floor and grouped result count.
// Non-positive values keep the defaults.
func (s *Service) WithLimits(maxFeatures int, minSimilarity float64, groupTopN int) *Service {
	if maxFeatures > 0 {
		s.maxFeatures = maxFeatures
	}
	if minSimilarity > 0 {
		s.minSimilarity = minSimilarity
	}
	if groupTopN > 0 {
		s.groupTopN = groupTopN
	}
	return s
}

// WithMetrics sets rebuild and size instruments. duration has a single "kind" label.
func (s *Service) WithMetrics(rebuilds prometheus.Counter, documents prometheus.Gauge, duration *prometheus.HistogramVec) *Service {
	s.rebuilds = rebuilds
	s.documents = documents
	s.duration = duration
	return s
}

// SearchByText returns up to topK products matching query, best first.
// Blank queries and an empty catalog yield an empty result.
func (s *Service) SearchByText(ctx context.Context, query string, topK int) ([]result.Result, error) {
	defer s.observe("text", time.Now())
	return s.search(ctx, query, topK)
}

// GroupByCategory runs a wide search and partitions the hits by category.
func (s *Service) GroupByCategory(ctx context.Context, query string) ([]result.CategoryGroup, error) {
	defer s.observe("category", time.Now())
	hits, err := s.search(ctx, query, s.groupTopN)
	if err != nil {
		return nil, err
	}
	return result.GroupByCategory(hits), nil
}

// Refresh rebuilds the model if the catalog changed since the last build.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.current(ctx)
	return err
}

func (s *Service) search(ctx context.Context, query string, topK int) ([]result.Result, error) {
	if strings.TrimSpace(query) == "" {
		return []result.Result{}, nil
	}
	req, err := request.New(query, topK)
	if err != nil {
		return nil, err
	}

	idx, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	hits := idx.model.Query(req.Query(), req.TopK(), s.minSimilarity)
	out := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		p := idx.products[h.Doc]
		out = append(out, result.New(p.ID(), p.Name(), p.Category(), h.Score, Explain(req.Query(), p)))
	}
	return out, nil
}

func (s *Service) current(ctx context.Context) (*index, error) {
	version, err := s.catalog.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog version: %w", err)
	}
	e, _, err := s.holder.Get(ctx, version)
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (s *Service) build(ctx context.Context, version int64) (*index, error) {
	log := logger.FromContextOr(ctx, s.log)

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	texts := make([]string, len(products))
	for i, p := range products {
		texts[i] = product.BuildDocument(p).Text
	}
	m := Build(texts, s.maxFeatures)

	if s.rebuilds != nil {
		s.rebuilds.Inc()
	}
	if s.documents != nil {
		s.documents.Set(float64(m.Len()))
	}
	log.Info("Lexical index rebuilt",
		zap.Int64("version", version),
		zap.Int("documents", m.Len()),
		zap.Int("terms", m.VocabularySize()),
	)
	return &index{products: products, model: m}, nil
}

func (s *Service) observe(kind string, start time.Time) {
	if s.duration == nil {
		return
	}
	s.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
