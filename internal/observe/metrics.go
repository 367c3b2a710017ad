package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trailtracker", Name: "notifications_total", Help: "SMS dispatch attempts by event and outcome"},
		[]string{"event", "outcome"},
	)
	TripTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trailtracker", Name: "trip_transitions_total", Help: "Trip status transitions by target status"},
		[]string{"to"},
	)
	LocationUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "trailtracker", Name: "location_updates_total", Help: "Location history rows appended"},
	)
)
