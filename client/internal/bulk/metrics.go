package bulk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "krag_client",
			Name:      "bulk_operations_total",
			Help:      "Completed bulk operations by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "krag_client",
			Name:      "bulk_operation_seconds",
			Help:      "Wall time from dispatch to aggregate result.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)
