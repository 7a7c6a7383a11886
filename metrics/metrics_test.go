package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Enqueued("a")
		m.Claimed("a")
		m.Finished("a", OutcomeCompleted, time.Second)
		m.ClaimError()
		m.Reaped(3)
		m.Leading(true)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := New(reg)

	m.Enqueued("email")
	m.Enqueued("email")
	m.Claimed("email")
	m.Claimed("email")
	m.Finished("email", OutcomeCompleted, 10*time.Millisecond)
	m.ClaimError()
	m.Reaped(2)
	m.Reaped(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.enqueued.WithLabelValues("email")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.claimed.WithLabelValues("email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.finished.WithLabelValues("email", OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claimErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reaped))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestLeading(t *testing.T) {
	m := New(prometheus.NewPedanticRegistry())

	m.Leading(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leader))
	m.Leading(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.leader))
	m.Leading(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.terms))
}
