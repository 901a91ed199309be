package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// wrt-agent metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wrt_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wrt_active_requests",
		Help: "Current in-flight requests",
	})

	StatusEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_status_events_total",
		Help: "Observed workspace status events",
	}, []string{"status"})

	LifecycleActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_lifecycle_actions_total",
		Help: "Actions taken by the lifecycle controller",
	}, []string{"action"})

	SubscriptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_subscriptions_total",
		Help: "Subscriptions issued to the event transport",
	}, []string{"channel", "event"})

	RemoteCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wrt_remote_call_duration_seconds",
		Help:    "Workspace runtime API call latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"op"})

	RemoteCallErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_remote_call_errors_total",
		Help: "Failed workspace runtime API calls",
	}, []string{"op"})

	TransportReconnectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_transport_reconnects_total",
		Help: "Event transport reconnect attempts",
	}, []string{"channel"})

	// wrt-infra metrics
	ProvisionedResourcesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_provisioned_resources_total",
		Help: "Resources renamed by provisioning",
	}, []string{"kind"})

	ProvisionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wrt_provision_failures_total",
		Help: "Aborted provisioning passes",
	}, []string{"reason"})

	MaterializeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wrt_materialize_duration_seconds",
		Help:    "Time to create a provisioned environment in the cluster",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, ActiveRequests,
		StatusEventsTotal, LifecycleActionsTotal, SubscriptionsTotal,
		RemoteCallDuration, RemoteCallErrorsTotal, TransportReconnectsTotal,
		ProvisionedResourcesTotal, ProvisionFailuresTotal, MaterializeDuration,
	)
}
