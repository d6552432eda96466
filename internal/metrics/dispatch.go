// Package metrics exposes dispatcher counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"post_scheduler/internal/domain"
)

type Dispatch struct {
	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	ticksTotal      *prometheus.CounterVec
	tickDuration    prometheus.Histogram
	duePosts        prometheus.Gauge
	itemErrors      prometheus.Counter
}

func NewDispatch(namespace string, reg prometheus.Registerer) *Dispatch {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Dispatch{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_attempts_total",
				Help:      "Total number of publication attempts",
			},
			[]string{"outcome"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_attempt_duration_seconds",
				Help:      "Duration of publication attempts",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		ticksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_ticks_total",
				Help:      "Total number of dispatch ticks",
			},
			[]string{"status"},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_tick_duration_seconds",
				Help:      "Duration of dispatch ticks",
				Buckets:   []float64{.05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
		),
		duePosts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dispatch_due_posts",
				Help:      "Number of due posts found by the last tick",
			},
		),
		itemErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_item_errors_total",
				Help:      "Posts whose outcome could not be recorded",
			},
		),
	}

	reg.MustRegister(
		m.attemptsTotal,
		m.attemptDuration,
		m.ticksTotal,
		m.tickDuration,
		m.duePosts,
		m.itemErrors,
	)

	return m
}

func (m *Dispatch) RecordAttempt(outcome domain.DispatchOutcome, duration time.Duration) {
	m.attemptsTotal.WithLabelValues(string(outcome)).Inc()
	m.attemptDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

// RecordTick records a finished tick. stats is nil when the tick failed
// before any post was examined.
func (m *Dispatch) RecordTick(stats *domain.DispatchStats, err error) {
	if err != nil || stats == nil {
		m.ticksTotal.WithLabelValues("error").Inc()
		return
	}
	m.ticksTotal.WithLabelValues("ok").Inc()
	m.tickDuration.Observe(stats.Duration.Seconds())
	m.duePosts.Set(float64(stats.Due))
	m.itemErrors.Add(float64(stats.Errors))
}
