package feature

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Dimensions is the descriptor length: 64 bins for each of H, S and V.
const Dimensions = 192

// Vector is a fixed-length color histogram descriptor.
type Vector []float32

// Validate checks the descriptor length and rejects NaN/Inf components.
func (v Vector) Validate() error {
	if len(v) != Dimensions {
		return fmt.Errorf("feature vector has %d dimensions, want %d", len(v), Dimensions)
	}
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("feature vector component %d is not finite", i)
		}
	}
	return nil
}

// Bytes encodes the vector as little-endian float32 bits.
func (v Vector) Bytes() []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// FromBytes decodes a vector written by Bytes.
func FromBytes(data []byte) (Vector, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid feature data: len=%d (not multiple of 4)", len(data))
	}
	v := make(Vector, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}

// Hash returns the hex SHA-256 of the encoded vector. Identical vectors hash identically.
func (v Vector) Hash() string {
	h := sha256.Sum256(v.Bytes())
	return hex.EncodeToString(h[:])
}

// Record is the stored descriptor of one product's image. One per product.
type Record struct {
	productID   string
	vector      Vector
	hash        string
	processedAt time.Time
}

// NewRecord validates the vector and creates a Record with its content hash.
func NewRecord(productID string, v Vector, processedAt time.Time) (Record, error) {
	if productID == "" {
		return Record{}, fmt.Errorf("product ID is required")
	}
	if err := v.Validate(); err != nil {
		return Record{}, err
	}
	return Record{productID: productID, vector: v, hash: v.Hash(), processedAt: processedAt.UTC()}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(productID string, v Vector, hash string, processedAt time.Time) Record {
	return Record{productID: productID, vector: v, hash: hash, processedAt: processedAt}
}

// ProductID returns the owning product.
func (r Record) ProductID() string { return r.productID }

// Vector returns the descriptor.
func (r Record) Vector() Vector { return r.vector }

// Hash returns the content hash of the descriptor.
func (r Record) Hash() string { return r.hash }

// ProcessedAt returns when the descriptor was extracted.
func (r Record) ProcessedAt() time.Time { return r.processedAt }
