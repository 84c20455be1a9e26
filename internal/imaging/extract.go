// Package imaging turns product photos into fixed-length HSV color histogram descriptors.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/econext/catalog-engine/internal/domain"
	"github.com/econext/catalog-engine/internal/domain/feature"
	"github.com/econext/catalog-engine/internal/numeric"
)

// Canvas geometry and histogram layout.
const (
	CanvasSize = 224
	Bins       = 64
	binShift   = 2 // 256 channel levels / 64 bins
)

// Extractor computes descriptors. The zero value is ready to use.
type Extractor struct{}

// NewExtractor creates a feature extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract decodes data and returns its H ‖ S ‖ V descriptor.
// Undecodable input yields an *domain.ImageDecodeError.
func (e *Extractor) Extract(data []byte) (feature.Vector, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewImageDecode("", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, domain.NewImageDecode("", fmt.Errorf("empty %s image", format))
	}
	return Describe(img), nil
}

// Describe resizes img to the canvas, ignoring aspect ratio, and builds the descriptor.
func Describe(img image.Image) feature.Vector {
	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	draw.BiLinear.Scale(canvas, canvas.Bounds(), img, img.Bounds(), draw.Src, nil)

	var hist [3][Bins]float64
	pix := canvas.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		h, s, v := hsv(pix[i], pix[i+1], pix[i+2])
		hist[0][h>>binShift]++
		hist[1][s>>binShift]++
		hist[2][v>>binShift]++
	}

	out := make(feature.Vector, 0, feature.Dimensions)
	for c := range hist {
		for _, x := range numeric.MinMaxScale(hist[c][:], 0, 1) {
			out = append(out, float32(x))
		}
	}
	return out
}

// hsv converts 8-bit RGB to 8-bit HSV with H in [0,180) and S,V in [0,255].
func hsv(r8, g8, b8 uint8) (h, s, v uint8) {
	r, g, b := float64(r8), float64(g8), float64(b8)
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	v = r8
	if g8 > v {
		v = g8
	}
	if b8 > v {
		v = b8
	}
	if maxC == 0 {
		return 0, 0, v
	}
	s = uint8(math.Round(255 * delta / maxC))
	if delta == 0 {
		return 0, s, v
	}

	var deg float64
	switch maxC {
	case r:
		deg = 60 * (g - b) / delta
	case g:
		deg = 120 + 60*(b-r)/delta
	default:
		deg = 240 + 60*(r-g)/delta
	}
	if deg < 0 {
		deg += 360
	}
	hv := math.Round(deg / 2)
	if hv >= 180 {
		hv -= 180
	}
	return uint8(hv), s, v
}
