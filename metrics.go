package warehouse

import (
	"github.com/armon/go-metrics"
)

// metricsSink forwards a handful of World-lifecycle counters to
// github.com/armon/go-metrics (grounded: Argus-Labs-world-engine/go.mod).
// It is optional: a nil *metricsSink (the default) means World carries no
// instrumentation overhead at all.
type metricsSink struct {
	sink *metrics.Metrics
}

// newMetricsSink wraps an already-configured *metrics.Metrics (e.g. one
// built with an InmemSink or a StatsiteSink by the embedding application).
func newMetricsSink(m *metrics.Metrics) *metricsSink {
	if m == nil {
		return nil
	}
	return &metricsSink{sink: m}
}

func (m *metricsSink) archetypeCreated() {
	if m == nil {
		return
	}
	m.sink.IncrCounter([]string{"warehouse", "archetypes", "created"}, 1)
}

func (m *metricsSink) entitiesAlive(n int) {
	if m == nil {
		return
	}
	m.sink.SetGauge([]string{"warehouse", "entities", "alive"}, float32(n))
}

func (m *metricsSink) borrowConflict() {
	if m == nil {
		return
	}
	m.sink.IncrCounter([]string{"warehouse", "borrow", "conflicts"}, 1)
}

func (m *metricsSink) commandReplayError() {
	if m == nil {
		return
	}
	m.sink.IncrCounter([]string{"warehouse", "commandbuffer", "replay_errors"}, 1)
}
