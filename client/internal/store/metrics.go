package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "krag_client",
			Name:      "events_applied_total",
			Help:      "Channel events merged into the view cache.",
		},
		[]string{"kind"},
	)

	eventsDeduped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "krag_client",
			Name:      "events_deduped_total",
			Help:      "Server echoes suppressed because the mutation was already applied locally.",
		},
		[]string{"kind"},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "krag_client",
			Name:      "events_dropped_total",
			Help:      "Events discarded for malformed payloads or unknown kinds.",
		},
		[]string{"kind"},
	)
)
