package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterCatalogMetrics_Idempotent(t *testing.T) {
	RegisterCatalogMetrics()
	RegisterCatalogMetrics() // must not panic on duplicate registration

	ForecastRunsTotal.WithLabelValues("ok").Inc()
	if v := testutil.ToFloat64(ForecastRunsTotal.WithLabelValues("ok")); v < 1 {
		t.Fatalf("forecast_runs_total{ok} = %v", v)
	}
}

func TestStatusWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	w := NewStatusWriter(rr)
	if w.Status() != http.StatusOK {
		t.Fatalf("default status = %d", w.Status())
	}
	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusInternalServerError) // ignored, first header wins
	_, _ = w.Write([]byte("short and stout"))

	if w.Status() != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", w.Status())
	}
	if w.BytesWritten() != len("short and stout") {
		t.Fatalf("bytes = %d", w.BytesWritten())
	}
	if NewStatusWriter(w) != w {
		t.Fatal("wrapping a StatusWriter twice must reuse it")
	}
}
