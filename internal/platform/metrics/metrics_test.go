package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsTransitions(t *testing.T) {
	m := New()

	m.ApplicationTransition("Pending", "Rejected", 3)
	m.ApplicationTransition("Pending", "Rejected", 0)
	m.ApplicationTransition("Pending", "Approved", 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.transitions.WithLabelValues("Pending", "Rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("Pending", "Approved")))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/pets", "GET", 200, 15*time.Millisecond)
	m.ObserveHTTP("", "GET", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/pets", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "GET", "404")))

	n, err := testutil.GatherAndCount(m.Registry(), "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ApplicationTransition("a", "b", 1)
	m.PetStatusChanged("Adopted", "workflow")
	m.ObserveHTTP("/", "GET", 200, time.Second)
	assert.NotNil(t, m.Handler())
}
