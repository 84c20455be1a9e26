package price

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func pt(n int, p string) Point {
	return Point{Date: day(n), Price: decimal.RequireFromString(p)}
}

func TestNewPoint(t *testing.T) {
	p, err := NewPoint(time.Date(2026, 3, 4, 17, 30, 0, 0, time.UTC), decimal.RequireFromString("10.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Date.Hour() != 0 || p.Date.Day() != 4 {
		t.Errorf("date not truncated: %v", p.Date)
	}

	if _, err := NewPoint(day(0), decimal.Zero); err == nil {
		t.Error("expected error for zero price")
	}
}

func TestNewSeries_RejectsUnordered(t *testing.T) {
	if _, err := NewSeries([]Point{pt(1, "10"), pt(0, "11")}); err == nil {
		t.Fatal("expected error for decreasing dates")
	}
	if _, err := NewSeries([]Point{pt(1, "10"), pt(1, "11")}); err == nil {
		t.Fatal("expected error for duplicate dates")
	}
	if _, err := NewSeries([]Point{pt(0, "-1")}); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestFromObservations_Sorts(t *testing.T) {
	s, err := FromObservations([]Point{pt(2, "12"), pt(0, "10"), pt(1, "11")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := s.Values()
	want := []float64{10, 11, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

func TestWindow(t *testing.T) {
	s, err := NewSeries([]Point{pt(0, "1"), pt(10, "2"), pt(20, "3"), pt(30, "4")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := s.Window(day(30).Add(15*time.Hour), 20)
	if w.Len() != 3 {
		t.Fatalf("Window len = %d, want 3", w.Len())
	}
	if !w.Points()[0].Date.Equal(day(10)) {
		t.Errorf("first point = %v, want %v", w.Points()[0].Date, day(10))
	}

	if s.Window(day(100), 5).Len() != 0 {
		t.Error("expected empty window")
	}
}
