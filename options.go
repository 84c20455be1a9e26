package catalogengine

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	driver           string
	addrs            []string
	username         string
	password         string
	db               int
	readinessTimeout time.Duration
	keyPrefix        string
	logger           *zap.Logger
	metrics          bool
	now              func() time.Time

	lookbackDays     int
	historyRetention int
	maxFeatures      int
	minSimilarity    float64
	groupTopN        int

	fetchTimeout  time.Duration
	fetchMaxBytes int64
}

// WithRedis connects the engine to a Redis 8+ deployment.
func WithRedis(addrs ...string) Option {
	return func(c *engineConfig) {
		c.driver = "redis"
		c.addrs = addrs
	}
}

// WithCredentials sets the Redis ACL user, password and logical database.
func WithCredentials(username, password string, db int) Option {
	return func(c *engineConfig) {
		c.username = username
		c.password = password
		c.db = db
	}
}

// WithMemoryStore keeps all state in process memory. Nothing survives Close.
func WithMemoryStore() Option {
	return func(c *engineConfig) {
		c.driver = "memory"
	}
}

// WithReadinessTimeout bounds how long New waits for the store.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		c.readinessTimeout = d
	}
}

// WithKeyPrefix namespaces every key the engine reads and writes.
func WithKeyPrefix(prefix string) Option {
	return func(c *engineConfig) {
		c.keyPrefix = prefix
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// WithMetrics registers the engine's Prometheus collectors with the default registry.
func WithMetrics() Option {
	return func(c *engineConfig) {
		c.metrics = true
	}
}

// WithClock overrides the time source used for forecast windows and feature timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		c.now = now
	}
}

// WithLookbackDays sets the trailing window of price observations used for forecasting.
func WithLookbackDays(days int) Option {
	return func(c *engineConfig) {
		c.lookbackDays = days
	}
}

// WithForecastRetention caps how many forecast runs are kept per product.
func WithForecastRetention(n int) Option {
	return func(c *engineConfig) {
		c.historyRetention = n
	}
}

// WithLexicalLimits overrides the vocabulary cap, the relevance floor and the
// number of hits considered for category grouping.
func WithLexicalLimits(maxFeatures int, minSimilarity float64, groupTopN int) Option {
	return func(c *engineConfig) {
		c.maxFeatures = maxFeatures
		c.minSimilarity = minSimilarity
		c.groupTopN = groupTopN
	}
}

// WithImageFetch sets the product image download timeout and size cap.
func WithImageFetch(timeout time.Duration, maxBytes int64) Option {
	return func(c *engineConfig) {
		c.fetchTimeout = timeout
		c.fetchMaxBytes = maxBytes
	}
}
