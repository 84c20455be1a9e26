package visual

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/domain"
	"github.com/econext/catalog-engine/internal/domain/feature"
	"github.com/econext/catalog-engine/internal/domain/search/request"
	"github.com/econext/catalog-engine/internal/domain/search/result"
	"github.com/econext/catalog-engine/internal/logger"
	"github.com/econext/catalog-engine/internal/numeric"
	"github.com/econext/catalog-engine/internal/snapshot"
)

// Service indexes product images and answers query-by-image searches.
type Service struct {
	products  ProductReader
	fetcher   ImageFetcher
	extractor Extractor
	store     FeatureStore
	holder    *snapshot.Holder[[]feature.Record]
	now       func() time.Time

	writes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	log      *zap.Logger
}

// New creates a visual index service.
func New(products ProductReader, fetcher ImageFetcher, extractor Extractor, store FeatureStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		products:  products,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		now:       time.Now,
		log:       log,
	}
	s.holder = snapshot.New(s.load)
	return s
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMetrics sets the write counter ("result" label) and search histogram ("kind" label).
func (s *Service) WithMetrics(writes *prometheus.CounterVec, duration *prometheus.HistogramVec) *Service {
	s.writes = writes
	s.duration = duration
	return s
}

// Index fetches the product's image, extracts its descriptor and stores it.
// An unchanged descriptor returns the stored record without writing.
func (s *Service) Index(ctx context.Context, productID string) (feature.Record, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return feature.Record{}, fmt.Errorf("get product: %w", err)
	}
	if p.ImageURL() == "" {
		return feature.Record{}, domain.NewImageDecode(productID, errors.New("product has no image"))
	}

	data, err := s.fetcher.Fetch(ctx, p.ImageURL())
	if err != nil {
		s.countWrite("error")
		if errors.Is(err, domain.ErrImageDecode) {
			return feature.Record{}, err
		}
		return feature.Record{}, domain.NewImageDecode(p.ImageURL(), err)
	}
	return s.IndexImage(ctx, productID, data)
}

// IndexImage stores the descriptor of caller-supplied image bytes for an existing product.
func (s *Service) IndexImage(ctx context.Context, productID string, data []byte) (feature.Record, error) {
	log := logger.FromContextOr(ctx, s.log)

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return feature.Record{}, fmt.Errorf("get product: %w", err)
	}

	vec, err := s.extractor.Extract(data)
	if err != nil {
		s.countWrite("error")
		return feature.Record{}, err
	}
	rec, err := feature.NewRecord(productID, vec, s.now())
	if err != nil {
		s.countWrite("error")
		return feature.Record{}, fmt.Errorf("build feature record: %w", err)
	}

	stored, err := s.store.Get(ctx, productID)
	switch {
	case err == nil && stored.Hash() == rec.Hash():
		s.countWrite("unchanged")
		log.Debug("Image features unchanged",
			zap.String("product_id", productID), zap.String("hash", rec.Hash()))
		return stored, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		s.countWrite("error")
		return feature.Record{}, fmt.Errorf("get features: %w", err)
	}

	if err := s.store.Put(ctx, rec); err != nil {
		s.countWrite("error")
		return feature.Record{}, fmt.Errorf("put features: %w", err)
	}
	s.countWrite("written")
	log.Info("Image features indexed",
		zap.String("product_id", productID), zap.String("hash", rec.Hash()))
	return rec, nil
}

// Search extracts the descriptor of data and ranks stored products against it.
func (s *Service) Search(ctx context.Context, data []byte, topK int) ([]result.VisualMatch, error) {
	vec, err := s.extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	return s.SearchByVector(ctx, vec, topK)
}

// SearchByVector ranks every stored descriptor by cosine similarity to vec.
// Ties are broken by product ID. No relevance floor is applied.
func (s *Service) SearchByVector(ctx context.Context, vec feature.Vector, topK int) ([]result.VisualMatch, error) {
	defer s.observe(time.Now())
	if err := vec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	topK = request.NormalizeTopK(topK)

	version, err := s.store.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("feature version: %w", err)
	}
	e, _, err := s.holder.Get(ctx, version)
	if err != nil {
		return nil, err
	}

	scored := make([]numeric.Scored[string], len(e.Value))
	for i, rec := range e.Value {
		scored[i] = numeric.Scored[string]{
			Item:  rec.ProductID(),
			Score: numeric.Clamp01(numeric.Cosine32(vec, rec.Vector())),
		}
	}
	out := make([]result.VisualMatch, 0, min(topK, len(scored)))
	for _, sc := range numeric.TopK(scored, topK) {
		out = append(out, result.VisualMatch{ProductID: sc.Item, Similarity: sc.Score})
	}
	return out, nil
}

// load reads every stored record, ordered by product ID so ranking ties are stable.
func (s *Service) load(ctx context.Context, version int64) ([]feature.Record, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	slices.SortFunc(recs, func(a, b feature.Record) int {
		return cmp.Compare(a.ProductID(), b.ProductID())
	})
	logger.FromContextOr(ctx, s.log).Debug("Visual index loaded",
		zap.Int64("version", version), zap.Int("records", len(recs)))
	return recs, nil
}

func (s *Service) countWrite(res string) {
	if s.writes != nil {
		s.writes.WithLabelValues(res).Inc()
	}
}

func (s *Service) observe(start time.Time) {
	if s.duration != nil {
		s.duration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	}
}
