package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes a circuit breaker state: closed, half-open or open.
type BreakerReporter interface {
	State() string
}
