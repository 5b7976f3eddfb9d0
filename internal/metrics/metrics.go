package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JoinsTotal counts member joins by attribution outcome.
	JoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_tracker_joins_total",
			Help: "Member joins by attribution outcome",
		},
		[]string{"outcome"},
	)

	// LeavesTotal counts member leaves by whether an inviter was on record.
	LeavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_tracker_leaves_total",
			Help: "Member leaves by attribution outcome",
		},
		[]string{"outcome"},
	)

	FetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_tracker_fetch_failures_total",
			Help: "Invite snapshot fetches that failed and fell back to an empty snapshot",
		},
	)

	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_tracker_persist_failures_total",
			Help: "Durable writes that failed, by table",
		},
		[]string{"table"},
	)

	RoleGrantFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_tracker_role_grant_failures_total",
			Help: "Role grants rejected by the platform",
		},
	)

	CachedGuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "invite_tracker_cached_guilds",
			Help: "Guilds with an invite snapshot in memory",
		},
	)

	// WorkflowSeconds tracks end-to-end join/leave handling time.
	WorkflowSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invite_tracker_workflow_seconds",
			Help:    "Join and leave workflow duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event"},
	)

	// RESTSeconds tracks Discord REST round trips.
	RESTSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invite_tracker_rest_seconds",
			Help:    "Discord REST request latency in seconds",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	GatewayEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_tracker_gateway_events_total",
			Help: "Gateway events handled, by type",
		},
		[]string{"event"},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_tracker_commands_total",
			Help: "Commands executed, by name",
		},
		[]string{"command"},
	)

	HeartbeatLatency = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "invite_tracker_heartbeat_latency_seconds",
			Help: "Last observed gateway heartbeat latency",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
