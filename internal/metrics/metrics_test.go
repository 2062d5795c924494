package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Second call is a no-op.
	if err := Register(reg); err != nil {
		t.Fatalf("Register (second): %v", err)
	}

	IncStart("w1")
	IncStart("w1")
	IncStop("w1")
	IncSignalFailure("w1")
	SetWorkerUp("w1", true)

	if got := testutil.ToFloat64(workerStarts.WithLabelValues("w1")); got != 2 {
		t.Fatalf("starts_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(workerStops.WithLabelValues("w1")); got != 1 {
		t.Fatalf("stops_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(signalFailures.WithLabelValues("w1")); got != 1 {
		t.Fatalf("signal_failures_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(workerUp.WithLabelValues("w1")); got != 1 {
		t.Fatalf("up = %v, want 1", got)
	}

	SetWorkerUp("w1", false)
	if got := testutil.ToFloat64(workerUp.WithLabelValues("w1")); got != 0 {
		t.Fatalf("up = %v, want 0", got)
	}
}

func TestRegisterDefaultRegistryTolerated(t *testing.T) {
	// Registering against the default registry after a prior Register must not
	// error even when collectors were already registered elsewhere.
	if err := Register(prometheus.DefaultRegisterer); err != nil {
		t.Fatalf("Register default: %v", err)
	}
}
