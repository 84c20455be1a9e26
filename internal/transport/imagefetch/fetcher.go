// Package imagefetch downloads product images over HTTP behind a circuit breaker.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/domain"
)

// BreakerName identifies the image fetch breaker in logs and health reports.
const BreakerName = "image-fetch"

// Config tunes the HTTP client and its breaker.
type Config struct {
	Timeout      time.Duration
	MaxBytes     int64
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state count reset period
	OpenTimeout  time.Duration // open → half-open delay
	MinRequests  uint32
	FailureRatio float64
}

// DefaultConfig returns a 10s timeout, a 10 MiB cap and a breaker tripping at 60 % failures over 10 requests.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxBytes:     10 << 20,
		MaxRequests:  3,
		Interval:     time.Minute,
		OpenTimeout:  30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

var (
	errTooLarge = errors.New("image exceeds size limit")
	errAborted  = errors.New("fetch aborted by caller")
)

// Fetcher downloads image bytes with a byte cap.
type Fetcher struct {
	client   *resty.Client
	cb       *gobreaker.CircuitBreaker[[]byte]
	maxBytes int64
	total    *prometheus.CounterVec
	log      *zap.Logger
}

// New creates a fetcher. Zero config fields fall back to DefaultConfig.
func New(cfg Config, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = def.FailureRatio
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "image/*")

	f := &Fetcher{client: client, maxBytes: cfg.MaxBytes, log: log}
	f.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// Client errors and aborted callers say nothing about the remote host's health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, errTooLarge) || errors.Is(err, errAborted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return f
}

// WithMetrics sets the fetch counter. total has a single "status" label.
func (f *Fetcher) WithMetrics(total *prometheus.CounterVec) *Fetcher {
	f.total = total
	return f
}

// Fetch downloads url. Every failure is an *domain.ImageDecodeError naming the url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.cb.Execute(func() ([]byte, error) {
		return f.get(ctx, url)
	})
	if err != nil {
		f.count(statusLabel(err))
		f.log.Debug("Image fetch failed", zap.String("url", url), zap.Error(err))
		return nil, domain.NewImageDecode(url, err)
	}
	f.count("ok")
	return data, nil
}

// State returns the breaker state name: closed, half-open or open.
func (f *Fetcher) State() string {
	return f.cb.State().String()
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		// The client's own timeout leaves ctx intact and still counts as a remote failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", errAborted, ctxErr)
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errTooLarge, f.maxBytes)
	}
	return data, nil
}

func (f *Fetcher) count(status string) {
	if f.total != nil {
		f.total.WithLabelValues(status).Inc()
	}
}

func statusLabel(err error) string {
	var se *StatusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.As(err, &se):
		return "http_error"
	case errors.Is(err, errTooLarge):
		return "too_large"
	case errors.Is(err, errAborted):
		return "aborted"
	default:
		return "error"
	}
}
