// Package metrics defines the MetricsCollector interface the store,
// search, and lsh packages report through, plus a no-op default and a
// Prometheus-backed implementation for long-running deployments that
// scrape vekta rather than invoke it once per command.
//
// Grounded on the teacher's own metrics.go interface shape, backed here
// by github.com/prometheus/client_golang, the metrics library the rest
// of the retrieval pack (dan-solli-gognee, rainmyy-VectorSphere) reaches
// for whenever it needs metrics at all.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector receives counts and timings from vekta's core packages. All
// methods must be safe for concurrent use.
type Collector interface {
	RecordAppended()
	RecordSkipped()
	SearchCompleted(method string, candidates int)
	LSHFallback()
}

// Nop discards every observation. It is the default collector so vekta's
// core packages never need a nil check.
type Nop struct{}

func (Nop) RecordAppended()                     {}
func (Nop) RecordSkipped()                      {}
func (Nop) SearchCompleted(method string, n int) {}
func (Nop) LSHFallback()                        {}

// Prometheus reports vekta's counters to a prometheus.Registerer, for a
// vekta process embedded in a longer-lived service rather than invoked
// once per CLI command.
type Prometheus struct {
	appended   prometheus.Counter
	skipped    prometheus.Counter
	searches   *prometheus.CounterVec
	candidates prometheus.Histogram
	fallbacks  prometheus.Counter
}

// NewPrometheus registers vekta's metrics on reg and returns a Collector
// backed by them.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vekta", Name: "records_appended_total",
			Help: "Number of records successfully appended to the store.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vekta", Name: "records_skipped_total",
			Help: "Number of input records rejected and skipped during add.",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vekta", Name: "searches_total",
			Help: "Number of completed searches, by method.",
		}, []string{"method"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vekta", Name: "search_candidates",
			Help:    "Number of candidates scored per search.",
			Buckets: prometheus.ExponentialBuckets(8, 4, 10),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vekta", Name: "lsh_fallbacks_total",
			Help: "Number of ANN searches that fell back to an exact scan.",
		}),
	}
	reg.MustRegister(p.appended, p.skipped, p.searches, p.candidates, p.fallbacks)
	return p
}

func (p *Prometheus) RecordAppended() { p.appended.Inc() }
func (p *Prometheus) RecordSkipped()  { p.skipped.Inc() }

func (p *Prometheus) SearchCompleted(method string, candidates int) {
	p.searches.WithLabelValues(method).Inc()
	p.candidates.Observe(float64(candidates))
}

func (p *Prometheus) LSHFallback() { p.fallbacks.Inc() }
