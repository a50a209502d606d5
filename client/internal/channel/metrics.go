package channel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "krag_client",
			Name:      "channel_reconnect_attempts_total",
			Help:      "Failed dials followed by a backoff wait.",
		},
	)

	latencyGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "krag_client",
			Name:      "channel_latency_ms",
			Help:      "Last ping round trip in milliseconds.",
		},
	)
)
