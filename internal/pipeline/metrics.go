package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	postsAssembled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "melomap_posts_assembled_total",
			Help: "Posts successfully assembled by the pipeline",
		},
	)
	extractionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "melomap_keyword_extraction_failures_total",
			Help: "Pipeline runs aborted by the keywording service",
		},
	)
	resolutionMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "melomap_track_resolution_misses_total",
			Help: "Keywords that yielded no track (no match or credential failure)",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(postsAssembled, extractionFailures, resolutionMisses)
}
