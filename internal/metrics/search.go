package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of searches",
		},
		[]string{"kind", "status"}, // kind: "text" / "document"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"},
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_returned",
			Help:      "Number of results returned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Number of documents in the loaded corpus",
		},
	)
)

func init() {
	prometheus.MustRegister(SearchRequestsTotal, SearchDuration, SearchResultsReturned, CorpusDocuments)
}

// Outcome names the status label recorded for errors matching Err.
type Outcome struct {
	Err   error
	Label string
}

// StatusLabel maps an error to the "status" label value. The first outcome whose Err
// matches via errors.Is wins; other errors are labelled "error".
func StatusLabel(err error, outcomes ...Outcome) string {
	if err == nil {
		return "success"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.Err) {
			return o.Label
		}
	}
	return "error"
}
