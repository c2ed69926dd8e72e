// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus instrumentation for the voting engine.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hacknight"

// Penalty outcomes
const (
	PenaltyApplied = "applied"
	PenaltyFailed  = "failed"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	transitions *prometheus.CounterVec
	penalties   *prometheus.CounterVec
	votes       *prometheus.CounterVec
	observers   prometheus.Gauge
	dropped     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Number of xad0w.b1ts stage transitions",
		}, []string{"from", "to", "trigger"}),
		penalties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalty_runs_total",
			Help:      "Number of penalty applier runs by outcome",
		}, []string{"outcome"}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_stored_total",
			Help:      "Number of ledger rows written by kind",
		}, []string{"kind"}),
		observers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "broadcast_observers",
			Help:      "Number of connected real-time observers",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_dropped_total",
			Help:      "Number of messages dropped for slow observers",
		}),
	}

	errs := []error{}
	for _, c := range []prometheus.Collector{m.transitions, m.penalties, m.votes, m.observers, m.dropped} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return m, errors.Join(errs...)
}

func (m *Metrics) ObserveTransition(from, to, trigger string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, trigger).Inc()
}

func (m *Metrics) ObservePenalty(outcome string) {
	if m == nil {
		return
	}
	m.penalties.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddVotes(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.votes.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserverConnected() {
	if m == nil {
		return
	}
	m.observers.Inc()
}

func (m *Metrics) ObserverDisconnected() {
	if m == nil {
		return
	}
	m.observers.Dec()
}

func (m *Metrics) MessageDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
