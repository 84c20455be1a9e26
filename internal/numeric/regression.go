package numeric

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateFit signals input that cannot determine a regression line.
var ErrDegenerateFit = errors.New("degenerate regression input")

// LinearFit is a fitted line y = Intercept + Slope*x.
type LinearFit struct {
	Intercept float64
	Slope     float64
}

// FitOLS fits ordinary least squares of y on a single feature x.
func FitOLS(x, y []float64) (LinearFit, error) {
	if len(x) != len(y) {
		return LinearFit{}, fmt.Errorf("%w: %d features vs %d targets", ErrDegenerateFit, len(x), len(y))
	}
	if len(x) < 2 {
		return LinearFit{}, fmt.Errorf("%w: need at least 2 observations, got %d", ErrDegenerateFit, len(x))
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var sxy, sxx float64
	for i := range x {
		dx := x[i] - meanX
		sxy += dx * (y[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return LinearFit{}, fmt.Errorf("%w: feature has zero variance", ErrDegenerateFit)
	}

	slope := sxy / sxx
	return LinearFit{Intercept: meanY - slope*meanX, Slope: slope}, nil
}

// Predict evaluates the line at x.
func (f LinearFit) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// RSquared returns the coefficient of determination of the fit on (x, y).
// It can be negative when the line explains y worse than its mean. When y is constant
// the score is 1 for a fit that reproduces it (up to rounding) and 0 otherwise.
func (f LinearFit) RSquared(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	meanY := Mean(y)
	constant := true
	var ssRes, ssTot float64
	for i := range y {
		r := y[i] - f.Predict(x[i])
		ssRes += r * r
		d := y[i] - meanY
		ssTot += d * d
		if y[i] != y[0] {
			constant = false
		}
	}
	if constant {
		tol := 1e-9 * math.Max(1, math.Abs(y[0]))
		if math.Sqrt(ssRes/float64(len(y))) <= tol {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
