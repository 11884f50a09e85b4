package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	ProcedureCallsTotal   *prometheus.CounterVec
	ProcedureCallDuration *prometheus.HistogramVec

	SessionsOpened    prometheus.Counter
	SessionOpenErrors prometheus.Counter
	PoolOpenConns     prometheus.Gauge

	AuditEntriesTotal *prometheus.CounterVec
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ProcedureCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "procedure_calls_total",
			Help:      "Total stored procedure invocations by procedure name and outcome.",
		}, []string{"procedure", "outcome"}),

		ProcedureCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "procedure_call_duration_seconds",
			Help:      "Stored procedure round-trip latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"procedure"}),

		SessionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "sessions_opened_total",
			Help:      "Total request sessions that acquired a pooled connection.",
		}),

		SessionOpenErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "session_open_errors_total",
			Help:      "Session open failures (pool exhausted or connect error). Alert if rising.",
		}),

		PoolOpenConns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "open_connections",
			Help:      "Current number of open database connections.",
		}),

		AuditEntriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Audit log entries written, by table and operation.",
		}, []string{"table", "operation"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
