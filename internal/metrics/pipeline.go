package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trovato",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by query kind",
		},
		[]string{"kind", "status"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trovato",
			Name:      "embedding_requests_total",
			Help:      "Total number of image embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trovato",
			Name:      "embedding_request_duration_seconds",
			Help:      "Image embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trovato",
			Name:      "model_requests_total",
			Help:      "Total number of multimodal model calls by prompt shape",
		},
		[]string{"op", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trovato",
			Name:      "model_request_duration_seconds",
			Help:      "Multimodal model call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"op"},
	)

	ImageDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trovato",
			Name:      "image_downloads_total",
			Help:      "Candidate image download outcomes",
		},
		[]string{"result"}, // "ok" / "error"
	)

	IndexedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trovato",
			Name:      "indexed_items_total",
			Help:      "Catalog indexer per-item outcomes",
		},
		[]string{"status"}, // "ok" / "failed" / "skipped"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(ModelRequestsTotal)
	prometheus.MustRegister(ModelRequestDuration)
	prometheus.MustRegister(ImageDownloadsTotal)
	prometheus.MustRegister(IndexedItemsTotal)
	pipelineMetricsRegistered = true
}
