package forecast

import (
	"fmt"
	"time"
)

// Recommendation is the buy-timing label derived from the forecasted price change.
type Recommendation string

const (
	// BestPrice means prices are expected to rise: buy now.
	BestPrice Recommendation = "best_price"
	// Wait means a price drop is likely.
	Wait Recommendation = "wait"
	// Neutral means no significant move is expected.
	Neutral Recommendation = "neutral"
)

// ChangeThresholdPercent is the fixed band around zero that classifies as Neutral.
const ChangeThresholdPercent = 5.0

// Classify maps a forecasted change percent to a label.
// Both boundaries are strict: exactly ±5 is Neutral.
func Classify(changePercent float64) Recommendation {
	switch {
	case changePercent < -ChangeThresholdPercent:
		return Wait
	case changePercent > ChangeThresholdPercent:
		return BestPrice
	default:
		return Neutral
	}
}

// Label returns the display text shown next to a prediction.
func (r Recommendation) Label() string {
	switch r {
	case BestPrice:
		return "Best Price"
	case Wait:
		return "Wait - Price Drop Likely"
	case Neutral:
		return "Neutral"
	default:
		return string(r)
	}
}

// Parse validates a stored label.
func Parse(s string) (Recommendation, error) {
	switch r := Recommendation(s); r {
	case BestPrice, Wait, Neutral:
		return r, nil
	default:
		return "", fmt.Errorf("unknown recommendation %q", s)
	}
}

// Result is one immutable forecast run for a product.
type Result struct {
	RunID         string         `json:"run_id"`
	ProductID     string         `json:"product_id"`
	CurrentPrice  float64        `json:"current_price"`
	Predictions   []float64      `json:"predictions"`
	ChangePercent float64        `json:"price_change_percent"`
	Recommend     Recommendation `json:"recommendation"`
	Confidence    float64        `json:"confidence"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AveragePrediction returns the mean of the forecasted prices.
func (r *Result) AveragePrediction() float64 {
	if len(r.Predictions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range r.Predictions {
		sum += p
	}
	return sum / float64(len(r.Predictions))
}
