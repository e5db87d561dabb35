package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	confirmedTotal  *prometheus.CounterVec
	paymentOutcomes *prometheus.CounterVec
	guardViolations prometheus.Counter
	submitLatency   prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		confirmedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "bookings",
			Name:      "completed_total",
			Help:      "Total bookings that reached confirmation, by status",
		}, []string{"status", "service"}),
		paymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "payments",
			Name:      "outcomes_total",
			Help:      "Total payment resolutions by method and status",
		}, []string{"method", "status"}),
		guardViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "homecare",
			Subsystem: "bookings",
			Name:      "guard_violations_total",
			Help:      "Step transitions refused because a guard did not hold",
		}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "homecare",
			Subsystem: "bookings",
			Name:      "submit_latency_seconds",
			Help:      "Latency of booking submission processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.confirmedTotal, m.paymentOutcomes, m.guardViolations, m.submitLatency)
	return m
}

func (m *BookingMetrics) ObserveCompleted(status, service string) {
	if m == nil {
		return
	}
	m.confirmedTotal.WithLabelValues(status, service).Inc()
}

func (m *BookingMetrics) ObservePaymentOutcome(method, status string) {
	if m == nil {
		return
	}
	m.paymentOutcomes.WithLabelValues(method, status).Inc()
}

func (m *BookingMetrics) ObserveGuardViolation() {
	if m == nil {
		return
	}
	m.guardViolations.Inc()
}

func (m *BookingMetrics) ObserveSubmitLatency(seconds float64) {
	if m == nil {
		return
	}
	m.submitLatency.Observe(seconds)
}
