package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/econext/catalog-engine/internal/domain"
	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
	"github.com/econext/catalog-engine/internal/domain/price"
	"github.com/econext/catalog-engine/internal/numeric"
)

// Forecaster projects a short-horizon price trend with a linear fit over day indices.
// It is stateless and safe for concurrent use.
type Forecaster struct {
	horizon   int
	minPoints int
}

// NewForecaster creates a Forecaster. Non-positive arguments fall back to 7 days / 5 points.
func NewForecaster(horizon, minPoints int) *Forecaster {
	def := domain.DefaultEngineConfig()
	if horizon <= 0 {
		horizon = def.ForecastHorizon
	}
	if minPoints <= 0 {
		minPoints = def.MinForecastPoints
	}
	return &Forecaster{horizon: horizon, minPoints: minPoints}
}

// Forecast fits price ~ standardized day index over the series and evaluates the
// next horizon days. The returned Result has no run metadata; callers stamp it.
func (f *Forecaster) Forecast(series price.Series, currentPrice decimal.Decimal) (domforecast.Result, error) {
	if series.Len() < f.minPoints {
		return domforecast.Result{}, domain.NewInsufficientData(series.Len(), f.minPoints)
	}
	if !currentPrice.IsPositive() {
		return domforecast.Result{}, fmt.Errorf("%w: current price %s", domain.ErrInvalidPrice, currentPrice)
	}

	y := series.Values()
	days := make([]float64, len(y))
	for i := range days {
		days[i] = float64(i)
	}

	scaler := numeric.FitScaler(days)
	x := scaler.TransformAll(days)

	fit, err := numeric.FitOLS(x, y)
	if err != nil {
		return domforecast.Result{}, fmt.Errorf("fit trend: %w", err)
	}

	predictions := make([]float64, f.horizon)
	for i := range predictions {
		predictions[i] = fit.Predict(scaler.Transform(float64(len(y) + i)))
	}

	current := currentPrice.InexactFloat64()
	res := domforecast.Result{
		CurrentPrice: current,
		Predictions:  predictions,
		Confidence:   numeric.Clamp01(fit.RSquared(x, y)),
	}
	res.ChangePercent = (res.AveragePrediction() - current) / current * 100
	res.Recommend = domforecast.Classify(res.ChangePercent)
	return res, nil
}
