package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notes"

const (
	EnrichmentApplied   = "applied"
	EnrichmentUnchanged = "unchanged"
	EnrichmentFailed    = "failed"
	EnrichmentDisabled  = "disabled"
)

var (
	registry = prometheus.NewRegistry()

	parseTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_total",
		Help:      "Parsed notes by section detection strategy.",
	}, []string{"strategy"})

	parseWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_warnings_total",
		Help:      "Validation and extraction warnings raised while parsing.",
	})

	parseConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "parse_confidence",
		Help:      "Confidence score of parsed notes.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	enrichmentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_total",
		Help:      "Enrichment attempts by outcome.",
	}, []string{"outcome"})

	publishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_failures_total",
		Help:      "Parsed-note events that could not be published.",
	})
)

func init() {
	registry.MustRegister(parseTotal, parseWarnings, parseConfidence, enrichmentTotal, publishFailures)
}

func ObserveParse(strategy string, warnings int, confidence float64) {
	if strategy == "" {
		strategy = "none"
	}
	parseTotal.WithLabelValues(strategy).Inc()
	parseWarnings.Add(float64(warnings))
	parseConfidence.Observe(confidence)
}

func ObserveEnrichment(outcome string) {
	enrichmentTotal.WithLabelValues(outcome).Inc()
}

func ObservePublishFailure() {
	publishFailures.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
