package price

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for observation dates.
const DateLayout = "2006-01-02"

// Point is a single daily price observation.
type Point struct {
	Date  time.Time
	Price decimal.Decimal
}

// NewPoint validates and creates a Point truncated to its UTC calendar day.
func NewPoint(date time.Time, p decimal.Decimal) (Point, error) {
	if !p.IsPositive() {
		return Point{}, fmt.Errorf("price must be positive, got %s", p)
	}
	return Point{Date: Day(date), Price: p}, nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Series is a chronological price series for one product (strictly increasing dates).
type Series struct {
	points []Point
}

// NewSeries validates ordering and creates a Series. Points must already be sorted.
func NewSeries(points []Point) (Series, error) {
	for i, p := range points {
		if !p.Price.IsPositive() {
			return Series{}, fmt.Errorf("point %d: price must be positive, got %s", i, p.Price)
		}
		if i > 0 && !p.Date.After(points[i-1].Date) {
			return Series{}, fmt.Errorf("point %d: date %s not after %s",
				i, p.Date.Format(DateLayout), points[i-1].Date.Format(DateLayout))
		}
	}
	c := make([]Point, len(points))
	copy(c, points)
	return Series{points: c}, nil
}

// FromObservations sorts unordered observations by date and builds a Series.
// Duplicate dates are rejected rather than merged.
func FromObservations(obs []Point) (Series, error) {
	sorted := make([]Point, len(obs))
	for i, o := range obs {
		sorted[i] = Point{Date: Day(o.Date), Price: o.Price}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return NewSeries(sorted)
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.points) }

// Points returns a copy of the observations.
func (s Series) Points() []Point {
	c := make([]Point, len(s.points))
	copy(c, s.points)
	return c
}

// Values returns prices as float64 in chronological order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}

// Window keeps observations dated on or after now minus lookbackDays (calendar days, UTC).
func (s Series) Window(now time.Time, lookbackDays int) Series {
	cutoff := Day(now).AddDate(0, 0, -lookbackDays)
	start := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(cutoff)
	})
	return Series{points: s.points[start:]}
}
