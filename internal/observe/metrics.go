// Package observe exposes Prometheus instrumentation for the core services.
package observe

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors the orchestrator updates.
type Metrics struct {
	registry *prometheus.Registry

	UsersOnline    prometheus.Gauge
	RoomsActive    prometheus.Gauge
	Proposals      prometheus.Counter
	RoomsCreated   prometheus.Counter
	RoomsExpired   prometheus.Counter
	Messages       prometheus.Counter
	SignalsRelayed prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		UsersOnline: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blink_users_online",
			Help: "Registered users with a live connection.",
		}),
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blink_rooms_active",
			Help: "Rooms currently running a countdown.",
		}),
		Proposals: factory.NewCounter(prometheus.CounterOpts{
			Name: "blink_match_proposals_total",
			Help: "Match proposals created.",
		}),
		RoomsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "blink_rooms_created_total",
			Help: "Rooms created on mutual acceptance.",
		}),
		RoomsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "blink_rooms_expired_total",
			Help: "Rooms closed by their countdown timer.",
		}),
		Messages: factory.NewCounter(prometheus.CounterOpts{
			Name: "blink_messages_total",
			Help: "Chat messages fanned out to rooms.",
		}),
		SignalsRelayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "blink_signals_relayed_total",
			Help: "Call negotiation messages relayed between peers.",
		}),
	}
}

// Handler serves the metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
