package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadgraph_datasets_total",
		Help: "Datasets processed by outcome (ok, invalid, empty, error)",
	}, []string{"status"})

	nodesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadgraph_nodes_dropped_total",
		Help: "Nodes removed because they were outside the largest connected component",
	})

	edgesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadgraph_adjacency_entries_total",
		Help: "Adjacency entries written across all datasets",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadgraph_pipeline_duration_seconds",
		Help:    "Time to turn one dataset into an adjacency index",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
