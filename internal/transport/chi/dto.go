package chi

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	domforecast "github.com/econext/catalog-engine/internal/domain/forecast"
	"github.com/econext/catalog-engine/internal/domain/search/result"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeInvalidQuery     = "invalid_query"
	codeInvalidPrice     = "invalid_price"
	codeInvalidSeries    = "invalid_series"
	codeInsufficientData = "insufficient_data"
	codeImageDecode      = "image_decode_failed"
	codeTooLarge         = "payload_too_large"
	codeInternal         = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type queryBinder interface {
	bind(q url.Values) error
}

type searchParams struct {
	Query string `validate:"required,max=256"`
	TopK  int    `validate:"gte=0,lte=100"`
}

func (p *searchParams) bind(q url.Values) error {
	p.Query = q.Get("q")
	return parseInt(q, "top_k", &p.TopK)
}

type categoryParams struct {
	Query string `validate:"required,max=256"`
}

func (p *categoryParams) bind(q url.Values) error {
	p.Query = q.Get("q")
	return nil
}

type imageParams struct {
	TopK int `validate:"gte=0,lte=100"`
}

func (p *imageParams) bind(q url.Values) error {
	return parseInt(q, "top_k", &p.TopK)
}

type historyParams struct {
	Limit int `validate:"gte=0,lte=1000"`
}

func (p *historyParams) bind(q url.Values) error {
	return parseInt(q, "limit", &p.Limit)
}

func parseInt(q url.Values, name string, dst *int) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s must be an integer", name)
	}
	*dst = n
	return nil
}

// paramName maps validated struct fields back to their query parameter names.
func paramName(field string) string {
	switch field {
	case "Query":
		return "q"
	case "TopK":
		return "top_k"
	case "Limit":
		return "limit"
	default:
		return field
	}
}

type forecastResponse struct {
	RunID               string    `json:"run_id"`
	ProductID           string    `json:"product_id"`
	CurrentPrice        float64   `json:"current_price"`
	Predictions         []float64 `json:"predictions"`
	PriceChangePercent  float64   `json:"price_change_percent"`
	Recommendation      string    `json:"recommendation"`
	RecommendationLabel string    `json:"recommendation_label"`
	Confidence          float64   `json:"confidence"`
	CreatedAt           time.Time `json:"created_at"`
}

type forecastListResponse struct {
	Items []forecastResponse `json:"items"`
	Count int                `json:"count"`
}

func forecastToResponse(r domforecast.Result) forecastResponse {
	return forecastResponse{
		RunID:               r.RunID,
		ProductID:           r.ProductID,
		CurrentPrice:        r.CurrentPrice,
		Predictions:         r.Predictions,
		PriceChangePercent:  r.ChangePercent,
		Recommendation:      string(r.Recommend),
		RecommendationLabel: r.Recommend.Label(),
		Confidence:          r.Confidence,
		CreatedAt:           r.CreatedAt,
	}
}

type searchResultResponse struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Similarity  float64 `json:"similarity"`
	Explanation string  `json:"explanation"`
}

type searchResponse struct {
	Items []searchResultResponse `json:"items"`
	Count int                    `json:"count"`
}

type categoryGroupResponse struct {
	Category string                 `json:"category"`
	Results  []searchResultResponse `json:"results"`
}

type categoryResponse struct {
	Groups []categoryGroupResponse `json:"groups"`
	Total  int                     `json:"total"`
}

func resultsToResponse(rs []result.Result) []searchResultResponse {
	out := make([]searchResultResponse, len(rs))
	for i := range rs {
		r := &rs[i]
		out[i] = searchResultResponse{
			ProductID:   r.ProductID(),
			Name:        r.Name(),
			Category:    r.Category(),
			Similarity:  r.Score(),
			Explanation: r.Explanation(),
		}
	}
	return out
}

type intentResponse struct {
	Query    string   `json:"query"`
	Keywords []string `json:"keywords"`
}

type visualMatchResponse struct {
	ProductID  string  `json:"product_id"`
	Similarity float64 `json:"similarity"`
}

type visualSearchResponse struct {
	Items []visualMatchResponse `json:"items"`
	Count int                   `json:"count"`
}

type featureRecordResponse struct {
	ProductID   string    `json:"product_id"`
	Hash        string    `json:"hash"`
	Dimensions  int       `json:"dimensions"`
	ProcessedAt time.Time `json:"processed_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
