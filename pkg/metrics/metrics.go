// CLAUDE:SUMMARY Prometheus counters for segmentation and speaker resolution, served on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "floorspeech"

// Metrics holds the process counters on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	Documents prometheus.Counter
	Speeches  prometheus.Counter
	Skipped   prometheus.Counter
	Matches   *prometheus.CounterVec
	Unmatched *prometheus.CounterVec
	Excluded  *prometheus.CounterVec
	Requests  *prometheus.CounterVec
}

// New registers all counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "documents_total",
			Help: "Documents normalized and segmented.",
		}),
		Speeches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "speeches_total",
			Help: "Speeches found by the segmenter.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "speeches_skipped_total",
			Help: "Speeches dropped because no last name could be parsed or no session applies.",
		}),
		Matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "matches_total",
			Help: "Speeches attributed to a legislator, by tier.",
		}, []string{"session", "matched_by"}),
		Unmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "unmatched_total",
			Help: "Speeches no tier could attribute.",
		}, []string{"session"}),
		Excluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "excluded_total",
			Help: "Approximate matches removed by the exception table.",
		}, []string{"session"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "requests_total",
			Help: "Endpoint calls by transport and outcome.",
		}, []string{"endpoint", "transport", "outcome"}),
	}
	reg.MustRegister(
		m.Documents, m.Speeches, m.Skipped, m.Matches, m.Unmatched, m.Excluded, m.Requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
