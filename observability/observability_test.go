package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCollectorRegistersDistinctMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.TickDuration.WithLabelValues("substep").Observe(0.01)
	c.FieldEnergy.Set(42)
	c.SubSteps.Inc()
	c.Revoxelizations.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected at least one registered metric family")
	}
}

func TestNewCollectorIsIdempotentOnRepeatedCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("unexpected error on first registration: %v", err)
	}
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("expected re-registering against the same registry to reuse existing collectors: %v", err)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.FieldEnergy.Set(1)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200 from /metrics handler; got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected non-empty metrics response body")
	}
}

func TestConfigureLoggingRejectsUnknownLevel(t *testing.T) {
	if err := ConfigureLogging("not-a-real-level"); err == nil {
		t.Fatalf("expected an error for an unrecognized log level")
	}
}

func TestConfigureLoggingAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "notice", "warning", "error", "critical", ""} {
		if err := ConfigureLogging(level); err != nil {
			t.Fatalf("unexpected error for level %q: %v", level, err)
		}
	}
}
