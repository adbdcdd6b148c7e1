package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "clinic")

	m.ObserveOperation("request_appointment", "ok", 3*time.Millisecond)
	m.ObserveOperation("request_appointment", "slot_unavailable", time.Millisecond)
	m.ObserveOperation("request_appointment", "ok", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("request_appointment", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("request_appointment", "slot_unavailable")))
}

func TestGaugesAndCounters(t *testing.T) {
	m := New(prometheus.NewRegistry(), "clinic")

	m.SetOfferedSlots(7)
	m.AddCascadeCancelled(2)
	m.AddSchedulesPurged(3)
	m.ObserveHTTP("GET", "/appointments", 404)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.OfferedSlots))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CascadeCancelled))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SchedulesPurged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/appointments", "4xx")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", "ok", time.Second)
		m.SetOfferedSlots(1)
		m.AddCascadeCancelled(1)
		m.AddSchedulesPurged(1)
		m.ObserveHTTP("GET", "/", 200)
	})
}
