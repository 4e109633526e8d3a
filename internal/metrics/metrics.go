package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatapp_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Live channel metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatapp_ws_connections",
			Help: "Currently open websocket connections",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatapp_rooms_active",
			Help: "Rooms with at least one live subscriber",
		},
	)

	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_messages_relayed_total",
			Help: "Messages persisted and broadcast",
		},
	)

	BroadcastDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_broadcast_drops_total",
			Help: "Subscribers dropped during broadcast for a stalled send buffer",
		},
	)

	HistoryQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_history_queries_total",
			Help: "History fetches over the request/response endpoint",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_store_errors_total",
			Help: "Failed conversation store operations",
		},
		[]string{"op"},
	)
)
