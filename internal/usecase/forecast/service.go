package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/domain"
	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
	"github.com/econext/catalog-engine/internal/domain/price"
	"github.com/econext/catalog-engine/internal/logger"
)

const defaultHistoryLimit = 30

// Service runs per-product forecasts against the catalog and records each run.
type Service struct {
	products     ProductReader
	prices       PriceReader
	results      ResultStore
	forecaster   *Forecaster
	lookbackDays int
	now          func() time.Time
	runsTotal    *prometheus.CounterVec
	log          *zap.Logger
}

// New creates a forecast service with the default 60-day lookback.
func New(products ProductReader, prices PriceReader, results ResultStore, f *Forecaster, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		products:     products,
		prices:       prices,
		results:      results,
		forecaster:   f,
		lookbackDays: domain.DefaultEngineConfig().LookbackDays,
		now:          time.Now,
		log:          log,
	}
}

// WithLookback sets the trailing window of observations considered.
func (s *Service) WithLookback(days int) *Service {
	if days > 0 {
		s.lookbackDays = days
	}
	return s
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMetrics sets the run counter. runs has a single "outcome" label.
func (s *Service) WithMetrics(runs *prometheus.CounterVec) *Service {
	s.runsTotal = runs
	return s
}

// Predict forecasts the product's next days from its windowed price history
// and appends the result to the product's forecast history.
func (s *Service) Predict(ctx context.Context, productID string) (domforecast.Result, error) {
	log := logger.FromContextOr(ctx, s.log)

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domforecast.Result{}, fmt.Errorf("get product: %w", err)
	}

	obs, err := s.prices.ListPrices(ctx, productID)
	if err != nil {
		return domforecast.Result{}, fmt.Errorf("list prices: %w", err)
	}
	series, err := price.FromObservations(obs)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrInvalidSeries, err)
		s.observe(err)
		return domforecast.Result{}, err
	}
	now := s.now()
	series = series.Window(now, s.lookbackDays)

	res, err := s.forecaster.Forecast(series, p.CurrentPrice())
	if err != nil {
		s.observe(err)
		if errors.Is(err, domain.ErrInsufficientData) {
			log.Debug("Not enough price history to forecast",
				zap.String("product_id", productID), zap.Int("points", series.Len()))
		}
		return domforecast.Result{}, err
	}

	res.RunID = uuid.NewString()
	res.ProductID = productID
	res.CreatedAt = now.UTC()

	if err := s.results.Save(ctx, res); err != nil {
		s.observe(err)
		return domforecast.Result{}, fmt.Errorf("save forecast: %w", err)
	}
	s.observe(nil)

	log.Info("Forecast recorded",
		zap.String("product_id", productID),
		zap.String("run_id", res.RunID),
		zap.String("recommendation", string(res.Recommend)),
		zap.Float64("price_change_percent", res.ChangePercent),
		zap.Float64("confidence", res.Confidence),
	)
	return res, nil
}

// Latest returns the most recent recorded forecast of a product.
func (s *Service) Latest(ctx context.Context, productID string) (domforecast.Result, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return domforecast.Result{}, fmt.Errorf("get product: %w", err)
	}
	res, err := s.results.Latest(ctx, productID)
	if err != nil {
		return domforecast.Result{}, fmt.Errorf("latest forecast: %w", err)
	}
	return res, nil
}

// History returns up to limit recorded forecasts, most recent first.
func (s *Service) History(ctx context.Context, productID string, limit int) ([]domforecast.Result, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	out, err := s.results.History(ctx, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("forecast history: %w", err)
	}
	return out, nil
}

func (s *Service) observe(err error) {
	if s.runsTotal == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInsufficientData):
		outcome = "insufficient_data"
	case errors.Is(err, domain.ErrInvalidPrice):
		outcome = "invalid_price"
	case errors.Is(err, domain.ErrInvalidSeries):
		outcome = "invalid_series"
	default:
		outcome = "error"
	}
	s.runsTotal.WithLabelValues(outcome).Inc()
}
