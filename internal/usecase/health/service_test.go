package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockBreaker struct {
	state string
}

func (m *mockBreaker) State() string { return m.state }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		breaker    BreakerReporter
		wantStatus Status
		wantDB     CheckResult
		wantFetch  CheckResult
	}{
		{"all healthy", nil, &mockBreaker{"closed"}, Healthy, CheckOK, CheckOK},
		{"breaker open", nil, &mockBreaker{"open"}, Degraded, CheckOK, CheckOpen},
		{"breaker half-open", nil, &mockBreaker{"half-open"}, Healthy, CheckOK, CheckRecovering},
		{"db down", errors.New("conn refused"), &mockBreaker{"closed"}, Unhealthy, CheckError, CheckOK},
		{"db down and breaker open", errors.New("conn refused"), &mockBreaker{"open"}, Unhealthy, CheckError, CheckOpen},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(&mockDBPinger{err: tc.dbErr}, tc.breaker).Check(context.Background())
			if r.Status != tc.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tc.wantStatus)
			}
			if r.Checks["database"] != tc.wantDB {
				t.Errorf("database = %q, want %q", r.Checks["database"], tc.wantDB)
			}
			if r.Checks["image_fetch"] != tc.wantFetch {
				t.Errorf("image_fetch = %q, want %q", r.Checks["image_fetch"], tc.wantFetch)
			}
		})
	}
}

func TestCheck_NilFetcher(t *testing.T) {
	r := New(&mockDBPinger{}, nil).Check(context.Background())
	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["image_fetch"]; ok {
		t.Error("image_fetch should not be present when fetcher is nil")
	}
}
