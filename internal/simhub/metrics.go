package simhub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricPanelClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autoq_panel_clients",
		Help: "Current number of connected panel clients",
	})

	metricEventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autoq_events_broadcast_total",
		Help: "Total log lines fanned out to panel clients",
	})

	metricActiveBots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autoq_active_bots",
		Help: "Current number of hunting bot loops",
	})

	metricTicketsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autoq_tickets_saved_total",
		Help: "Total ticket artifacts written",
	})
)
