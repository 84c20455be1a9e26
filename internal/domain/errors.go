package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing product or record.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientData signals a price series too short to forecast.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrImageDecode signals image bytes that cannot be decoded or fetched.
	ErrImageDecode = errors.New("image decode failed")
	// ErrInvalidPrice signals a non-positive price where a positive one is required.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidSeries signals a price series violating ordering or value rules.
	ErrInvalidSeries = errors.New("invalid price series")
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
)

// InsufficientDataError wraps ErrInsufficientData with the observed and required counts.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: have %d points, need %d", ErrInsufficientData.Error(), e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// NewInsufficientData creates an insufficient data error.
func NewInsufficientData(have, need int) error {
	return &InsufficientDataError{Have: have, Need: need}
}

// ImageDecodeError wraps ErrImageDecode with the image source and the underlying cause.
type ImageDecodeError struct {
	Source string
	Err    error
}

func (e *ImageDecodeError) Error() string {
	msg := ErrImageDecode.Error()
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *ImageDecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrImageDecode}
	}
	return []error{ErrImageDecode, e.Err}
}

// NewImageDecode creates an image decode error for the given source.
func NewImageDecode(source string, err error) error {
	return &ImageDecodeError{Source: source, Err: err}
}
