// Package metrics exposes the queue's Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Finish outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeRetried   = "retried"
	OutcomeDead      = "dead"
	OutcomeUnknown   = "unknown"
	OutcomeLost      = "lost"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	enqueued    *prometheus.CounterVec
	claimed     *prometheus.CounterVec
	finished    *prometheus.CounterVec
	claimErrors prometheus.Counter
	inFlight    prometheus.Gauge
	duration    *prometheus.HistogramVec
	reaped      prometheus.Counter
	leader      prometheus.Gauge
	terms       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pgjobq",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs inserted through Enqueue.",
		}, []string{"name"}),
		claimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pgjobq",
			Name:      "jobs_claimed_total",
			Help:      "Jobs claimed by a worker slot.",
		}, []string{"name"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pgjobq",
			Name:      "jobs_finished_total",
			Help:      "Claimed jobs by how their attempt ended.",
		}, []string{"name", "outcome"}),
		claimErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pgjobq",
			Name:      "claim_errors_total",
			Help:      "Claim attempts that failed against the store.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pgjobq",
			Name:      "jobs_in_flight",
			Help:      "Handlers currently executing.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pgjobq",
			Name:      "job_duration_seconds",
			Help:      "Handler execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10),
		}, []string{"name"}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pgjobq",
			Name:      "jobs_reaped_total",
			Help:      "Stale claims released by the stale sweep.",
		}),
		leader: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pgjobq",
			Name:      "leader",
			Help:      "1 while this process holds the maintenance lock.",
		}),
		terms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pgjobq",
			Name:      "leader_terms_total",
			Help:      "Times this process acquired the maintenance lock.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.enqueued, m.claimed, m.finished, m.claimErrors, m.inFlight, m.duration, m.reaped, m.leader, m.terms)
	}
	return m
}

func (m *Metrics) Enqueued(name string) {
	if m == nil {
		return
	}
	m.enqueued.WithLabelValues(name).Inc()
}

func (m *Metrics) Claimed(name string) {
	if m == nil {
		return
	}
	m.claimed.WithLabelValues(name).Inc()
	m.inFlight.Inc()
}

// Finished records the end of a claimed attempt. It must be paired with a
// prior Claimed call.
func (m *Metrics) Finished(name, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.finished.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(took.Seconds())
}

func (m *Metrics) ClaimError() {
	if m == nil {
		return
	}
	m.claimErrors.Inc()
}

func (m *Metrics) Reaped(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.reaped.Add(float64(n))
}

// Leading records a leadership change.
func (m *Metrics) Leading(v bool) {
	if m == nil {
		return
	}
	if v {
		m.leader.Set(1)
		m.terms.Inc()
		return
	}
	m.leader.Set(0)
}
