// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsCount(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveTransition("guess", "complete", "deadline")
	m.ObserveTransition("guess", "complete", "deadline")
	m.ObservePenalty(PenaltyApplied)
	m.AddVotes("pitch", 3)
	m.AddVotes("pitch", 0)
	m.ObserverConnected()
	m.ObserverConnected()
	m.ObserverDisconnected()
	m.MessageDropped()

	require.Equal(t, 2.0, promtest.ToFloat64(m.transitions.WithLabelValues("guess", "complete", "deadline")))
	require.Equal(t, 1.0, promtest.ToFloat64(m.penalties.WithLabelValues(PenaltyApplied)))
	require.Equal(t, 3.0, promtest.ToFloat64(m.votes.WithLabelValues("pitch")))
	require.Equal(t, 1.0, promtest.ToFloat64(m.observers))
	require.Equal(t, 1.0, promtest.ToFloat64(m.dropped))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	require.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTransition("a", "b", "c")
	m.ObservePenalty(PenaltyFailed)
	m.AddVotes("pitch", 1)
	m.ObserverConnected()
	m.ObserverDisconnected()
	m.MessageDropped()
}
