package catalogengine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/econext/catalog-engine/internal/domain"
	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
	"github.com/econext/catalog-engine/internal/domain/search/result"
)

// Errors returned by Engine methods. Match them with errors.Is.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrInsufficientData = domain.ErrInsufficientData
	ErrImageDecode      = domain.ErrImageDecode
	ErrInvalidPrice     = domain.ErrInvalidPrice
	ErrInvalidSeries    = domain.ErrInvalidSeries
	ErrInvalidQuery     = domain.ErrInvalidQuery
)

// Product is a catalog entry as written by the shop's catalog owner.
type Product struct {
	ID           string
	Name         string
	Category     string
	Tags         []string
	Description  string
	ImageURL     string
	CurrentPrice decimal.Decimal
}

// PriceObservation is one dated price of one product.
type PriceObservation struct {
	ProductID string
	Date      time.Time
	Price     decimal.Decimal
}

// Recommendation is the buy-timing label of a forecast.
type Recommendation string

// Recommendation values.
const (
	BestPrice Recommendation = Recommendation(domforecast.BestPrice)
	Wait      Recommendation = Recommendation(domforecast.Wait)
	Neutral   Recommendation = Recommendation(domforecast.Neutral)
)

// Label returns the display text for r.
func (r Recommendation) Label() string {
	return domforecast.Recommendation(r).Label()
}

// Forecast is one price forecast run.
type Forecast struct {
	RunID              string
	ProductID          string
	CurrentPrice       float64
	Predictions        []float64
	PriceChangePercent float64
	Recommendation     Recommendation
	Confidence         float64
	CreatedAt          time.Time
}

// SearchResult is a lexical search hit.
type SearchResult struct {
	ProductID   string
	Name        string
	Category    string
	Similarity  float64
	Explanation string
}

// CategoryGroup holds the hits of one category, best first.
type CategoryGroup struct {
	Category string
	Results  []SearchResult
}

// VisualMatch is an image similarity hit.
type VisualMatch struct {
	ProductID  string
	Similarity float64
}

// ImageFeatures describes the stored image descriptor of a product.
type ImageFeatures struct {
	ProductID   string
	Hash        string
	Dimensions  int
	ProcessedAt time.Time
}

// HealthReport is the aggregated component status.
type HealthReport struct {
	Status string
	Checks map[string]string
}

func forecastFromDomain(r domforecast.Result) Forecast {
	return Forecast{
		RunID:              r.RunID,
		ProductID:          r.ProductID,
		CurrentPrice:       r.CurrentPrice,
		Predictions:        r.Predictions,
		PriceChangePercent: r.ChangePercent,
		Recommendation:     Recommendation(r.Recommend),
		Confidence:         r.Confidence,
		CreatedAt:          r.CreatedAt,
	}
}

func resultsFromDomain(rs []result.Result) []SearchResult {
	out := make([]SearchResult, len(rs))
	for i := range rs {
		r := &rs[i]
		out[i] = SearchResult{
			ProductID:   r.ProductID(),
			Name:        r.Name(),
			Category:    r.Category(),
			Similarity:  r.Score(),
			Explanation: r.Explanation(),
		}
	}
	return out
}
