package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	// None of these may panic on a nil receiver; metrics are optional.
	m.RecordAttempt("products", "success")
	m.RecordRetry("products")
	m.RecordRequest("products", "200", 0.1)
	m.RecordRegistryCall("getServices", 0.05)
	m.SetStatus(1)
}

// New registers its collectors with the global default registry, so
// every assertion against a live *Metrics shares a single instance
// constructed once here — a second New() call in the same test binary
// would panic on duplicate registration.
func TestMetrics_RecordingUpdatesCollectors(t *testing.T) {
	m := New()

	m.RecordAttempt("products", "success")
	m.RecordAttempt("products", "success")
	if got := testutil.ToFloat64(m.ProxyAttempts.WithLabelValues("products", "success")); got != 2 {
		t.Fatalf("expected counter value 2, got %v", got)
	}

	m.SetStatus(3)
	if got := testutil.ToFloat64(m.GatewayStatus); got != 3 {
		t.Fatalf("expected gauge value 3, got %v", got)
	}

	m.RecordRetry("orders")
	if got := testutil.ToFloat64(m.ProxyRetries.WithLabelValues("orders")); got != 1 {
		t.Fatalf("expected retry counter value 1, got %v", got)
	}
}
