package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/econext/catalog-engine/internal/domain"
	"github.com/econext/catalog-engine/internal/domain/feature"
	"github.com/econext/catalog-engine/internal/numeric"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: uint8(y * 255 / max(h-1, 1)), B: 90, A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtract_ShapeAndRange(t *testing.T) {
	v, err := NewExtractor().Extract(encodePNG(t, gradient(300, 120)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("invalid vector: %v", err)
	}
	if len(v) != feature.Dimensions {
		t.Fatalf("len = %d, want %d", len(v), feature.Dimensions)
	}
	for c := range 3 {
		var sawOne bool
		for _, x := range v[c*Bins : (c+1)*Bins] {
			if x < 0 || x > 1 {
				t.Fatalf("component %v out of [0,1]", x)
			}
			if x == 1 {
				sawOne = true
			}
		}
		if !sawOne {
			t.Fatalf("histogram %d has no bin at 1 after min-max", c)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	data := encodePNG(t, gradient(64, 64))
	a, err := NewExtractor().Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := NewExtractor().Extract(data)
	if a.Hash() != b.Hash() {
		t.Fatal("same bytes must give the same descriptor")
	}
}

func TestExtract_SelfSimilarity(t *testing.T) {
	data := encodePNG(t, gradient(200, 200))
	v, err := NewExtractor().Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := numeric.Cosine32(v, v); math.Abs(s-1) > 1e-6 {
		t.Fatalf("self similarity = %v", s)
	}
}

func TestExtract_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(50, 80), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	if _, err := NewExtractor().Extract(buf.Bytes()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtract_SolidColorBins(t *testing.T) {
	// Pure red: H=0, S=255, V=255.
	v, err := NewExtractor().Extract(encodePNG(t, solid(10, 10, color.RGBA{R: 255, A: 255})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v[0] != 1 || v[Bins+63] != 1 || v[2*Bins+63] != 1 {
		t.Fatalf("unexpected peak bins: h0=%v s63=%v v63=%v", v[0], v[Bins+63], v[2*Bins+63])
	}
	if v[1] != 0 || v[Bins] != 0 {
		t.Fatal("empty bins must scale to 0")
	}
}

func TestExtract_InvalidBytes(t *testing.T) {
	_, err := NewExtractor().Extract([]byte("definitely not an image"))
	if !errors.Is(err, domain.ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode, got %v", err)
	}
	var decodeErr *domain.ImageDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *ImageDecodeError, got %T", err)
	}
}

func TestHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		h, s, v uint8
	}{
		{"black", 0, 0, 0, 0, 0, 0},
		{"white", 255, 255, 255, 0, 0, 255},
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"grey", 128, 128, 128, 0, 0, 128},
		{"hue wraps to zero", 255, 0, 1, 0, 255, 255},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, s, v := hsv(tc.r, tc.g, tc.b)
			if h != tc.h || s != tc.s || v != tc.v {
				t.Fatalf("hsv(%d,%d,%d) = (%d,%d,%d), want (%d,%d,%d)", tc.r, tc.g, tc.b, h, s, v, tc.h, tc.s, tc.v)
			}
		})
	}
}
