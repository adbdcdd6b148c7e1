package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the scheduling collectors. A nil *Metrics is a no-op.
type Metrics struct {
	Operations       *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	OfferedSlots     prometheus.Gauge
	CascadeCancelled prometheus.Counter
	SchedulesPurged  prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Scheduling operations by name and result kind",
		}, []string{"operation", "result"}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "operation_duration_seconds",
			Help:      "Duration of scheduling operations including persistence",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		OfferedSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "offered_slots",
			Help:      "Slots currently offered for booking across all doctors",
		}),
		CascadeCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "leave_cascade_cancellations_total",
			Help:      "Appointments cancelled by leave approval",
		}),
		SchedulesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "schedules_purged_total",
			Help:      "Past schedule entries removed by the janitor",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.Operations,
		m.OperationLatency,
		m.OfferedSlots,
		m.CascadeCancelled,
		m.SchedulesPurged,
		m.HTTPRequests,
	)
	return m
}

func (m *Metrics) ObserveOperation(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.OperationLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) SetOfferedSlots(n int) {
	if m == nil {
		return
	}
	m.OfferedSlots.Set(float64(n))
}

func (m *Metrics) AddCascadeCancelled(n int) {
	if m == nil {
		return
	}
	m.CascadeCancelled.Add(float64(n))
}

func (m *Metrics) AddSchedulesPurged(n int) {
	if m == nil {
		return
	}
	m.SchedulesPurged.Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
