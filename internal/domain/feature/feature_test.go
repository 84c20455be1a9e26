package feature

import (
	"math"
	"testing"
	"time"
)

func testVector(seed float32) Vector {
	v := make(Vector, Dimensions)
	for i := range v {
		v[i] = seed * float32(i%7) / 7
	}
	return v
}

func TestVector_Validate(t *testing.T) {
	if err := testVector(1).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := make(Vector, 10).Validate(); err == nil {
		t.Error("expected dimension error")
	}
	bad := testVector(1)
	bad[3] = float32(math.NaN())
	if err := bad.Validate(); err == nil {
		t.Error("expected NaN error")
	}
}

func TestVector_BytesRoundTrip(t *testing.T) {
	v := testVector(0.5)
	got, err := FromBytes(v.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range v {
		if got[i] != v[i] {
			t.Fatalf("component %d: got %v, want %v", i, got[i], v[i])
		}
	}
	if _, err := FromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestVector_HashStable(t *testing.T) {
	a, b := testVector(1), testVector(1)
	if a.Hash() != b.Hash() {
		t.Error("identical vectors hashed differently")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("hash length = %d", len(a.Hash()))
	}
	if a.Hash() == testVector(0.9).Hash() {
		t.Error("different vectors share a hash")
	}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	r, err := NewRecord("sku-1", testVector(1), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ProductID() != "sku-1" || r.Hash() != testVector(1).Hash() || !r.ProcessedAt().Equal(now) {
		t.Errorf("unexpected record: %+v", r)
	}

	if _, err := NewRecord("", testVector(1), now); err == nil {
		t.Error("expected error for empty product ID")
	}
	if _, err := NewRecord("sku-1", Vector{1}, now); err == nil {
		t.Error("expected error for short vector")
	}
}
