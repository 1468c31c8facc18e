package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRegistry_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	// A CounterVec is only gathered once it has at least one child.
	r.EventsIngested.WithLabelValues("jsonl")
	r.EventsSkipped.WithLabelValues("jsonl")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 8)
}

func TestRegistry_EventsIngestedIsLabeledByFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.EventsIngested.WithLabelValues("jsonl").Add(3)
	r.EventsIngested.WithLabelValues("csv").Add(1)

	assert.Equal(t, 3.0, counterValue(t, r.EventsIngested.WithLabelValues("jsonl")))
	assert.Equal(t, 1.0, counterValue(t, r.EventsIngested.WithLabelValues("csv")))
}

func TestRegistry_CircuitStateGaugeReflectsSetValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.CircuitState.Set(float64(CircuitOpen))
	assert.Equal(t, float64(CircuitOpen), gaugeValue(t, r.CircuitState))
}

func TestRegistry_UnregisterAllowsFreshRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.Unregister()

	assert.NotPanics(t, func() {
		New(reg)
	})
}
