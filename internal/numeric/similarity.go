package numeric

import (
	"cmp"
	"math"
	"slices"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// Mismatched lengths, empty input and zero vectors yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Cosine32 is Cosine for float32 vectors, accumulated in float64.
func Cosine32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// L2Normalize scales v in place to unit length. Zero vectors are left untouched.
func L2Normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}

// MinMaxScale maps values linearly onto [lo, hi]. Constant input maps to lo.
func MinMaxScale(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	span := maxV - minV
	for i, v := range values {
		if span == 0 {
			out[i] = lo
			continue
		}
		out[i] = lo + (v-minV)*(hi-lo)/span
	}
	return out
}

// Scored pairs an item with its similarity score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// TopK sorts by score descending, keeping input order for ties, and truncates to k.
// k <= 0 keeps everything.
func TopK[T any](items []Scored[T], k int) []Scored[T] {
	slices.SortStableFunc(items, func(a, b Scored[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k > 0 && len(items) > k {
		items = items[:k]
	}
	return items
}
