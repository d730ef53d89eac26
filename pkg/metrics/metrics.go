package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Hierarchy metrics
	EVSEsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wwcp_evses_total",
			Help: "Total number of EVSEs by operator",
		},
		[]string{"operator"},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_status_transitions_total",
			Help: "Total number of status transitions by entity kind",
		},
		[]string{"entity"},
	)

	MessagesPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_bus_messages_total",
			Help: "Total number of messages published on the bus by kind",
		},
		[]string{"kind"},
	)

	// Reservation / session metrics
	ReservationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_reservations_total",
			Help: "Total number of reserve calls by outcome",
		},
		[]string{"outcome"},
	)

	RemoteStartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_remote_starts_total",
			Help: "Total number of remote start calls by outcome",
		},
		[]string{"outcome"},
	)

	RemoteStopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_remote_stops_total",
			Help: "Total number of remote stop calls by outcome",
		},
		[]string{"outcome"},
	)

	// Provider metrics
	ProviderQueueLength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wwcp_provider_queue_length",
			Help: "Current length of the provider upload queues",
		},
		[]string{"provider", "queue"},
	)

	FlushCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_provider_flush_cycles_total",
			Help: "Total number of provider flush cycles",
		},
		[]string{"provider"},
	)

	FlushDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wwcp_provider_flush_duration_seconds",
			Help:    "Provider flush cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	UpstreamPushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wwcp_upstream_pushes_total",
			Help: "Total number of upstream push calls by operation and result",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(EVSEsTotal)
	prometheus.MustRegister(StatusTransitionsTotal)
	prometheus.MustRegister(MessagesPublishedTotal)
	prometheus.MustRegister(ReservationsTotal)
	prometheus.MustRegister(RemoteStartsTotal)
	prometheus.MustRegister(RemoteStopsTotal)
	prometheus.MustRegister(ProviderQueueLength)
	prometheus.MustRegister(FlushCyclesTotal)
	prometheus.MustRegister(FlushDuration)
	prometheus.MustRegister(UpstreamPushesTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
