package metrics

import "github.com/prometheus/client_golang/prometheus"

// CRM and tool Prometheus metrics.
var (
	CRMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pipedex",
			Name:      "crm_requests_total",
			Help:      "Total number of Pipedrive API requests",
		},
		[]string{"operation", "status"},
	)

	CRMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pipedex",
			Name:      "crm_request_duration_seconds",
			Help:      "Pipedrive API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	CRMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pipedex",
			Name:      "crm_errors_total",
			Help:      "Total Pipedrive API errors",
		},
		[]string{"operation", "error_type"},
	)

	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pipedex",
			Name:      "tool_invocations_total",
			Help:      "Total MCP tool invocations",
		},
		[]string{"tool", "status"},
	)

	ToolInvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pipedex",
			Name:      "tool_invocation_duration_seconds",
			Help:      "MCP tool invocation duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"},
	)

	ThrottleInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pipedex",
			Name:      "throttle_in_flight_calls",
			Help:      "Remote calls currently dispatched through the invoker",
		},
	)

	ThrottleQueueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pipedex",
			Name:      "throttle_queue_wait_seconds",
			Help:      "Time calls spend waiting for a throttle slot",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	BudgetCallsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pipedex",
			Name:      "budget_calls_remaining",
			Help:      "Remaining API call budget",
		},
		[]string{"period"},
	)
)

var registered bool

// Register registers all pipedex metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(CRMRequestsTotal)
	prometheus.MustRegister(CRMRequestDuration)
	prometheus.MustRegister(CRMErrorsTotal)
	prometheus.MustRegister(ToolInvocationsTotal)
	prometheus.MustRegister(ToolInvocationDuration)
	prometheus.MustRegister(ThrottleInFlight)
	prometheus.MustRegister(ThrottleQueueWait)
	prometheus.MustRegister(BudgetCallsRemaining)
	registered = true
}
