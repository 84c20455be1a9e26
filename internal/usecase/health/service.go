package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the image fetcher is shedding load; search and forecasting still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckOpen indicates a tripped circuit breaker.
	CheckOpen CheckResult = "open"
	// CheckRecovering indicates a half-open circuit breaker probing the remote.
	CheckRecovering CheckResult = "half-open"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	fetcher BreakerReporter
}

// New creates a Service. fetcher can be nil.
func New(db DBPinger, fetcher BreakerReporter) *Service {
	return &Service{db: db, fetcher: fetcher}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.fetcher != nil {
		switch s.fetcher.State() {
		case "open":
			checks["image_fetch"] = CheckOpen
			if status == Healthy {
				status = Degraded
			}
		case "half-open":
			checks["image_fetch"] = CheckRecovering
		default:
			checks["image_fetch"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
