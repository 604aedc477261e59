// Package metrics exposes Prometheus counters for the tagging pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	Files     *prometheus.CounterVec
	RawTags   prometheus.Counter
	Flushes   *prometheus.CounterVec
	Sentences prometheus.Counter
	Buffered  prometheus.Gauge
}

// New registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Files: f.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_tagger_files_total",
			Help: "Input files processed, by result",
		}, []string{"result"}),
		RawTags: f.NewCounter(prometheus.CounterOpts{
			Name: "speech_tagger_raw_tags_total",
			Help: "Word-level tags written to raw artifacts",
		}),
		Flushes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_tagger_flushes_total",
			Help: "Trailing buffer flushes, by status",
		}, []string{"status"}),
		Sentences: f.NewCounter(prometheus.CounterOpts{
			Name: "speech_tagger_sentences_total",
			Help: "Sentence-level tags written to prettified artifacts",
		}),
		Buffered: f.NewGauge(prometheus.GaugeOpts{
			Name: "speech_tagger_buffered_seconds",
			Help: "Audio currently held in the trailing buffer",
		}),
	}
}

func (m *Metrics) File(result string) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues(result).Inc()
}

func (m *Metrics) Raw(n int) {
	if m == nil {
		return
	}
	m.RawTags.Add(float64(n))
}

func (m *Metrics) Flush(status string, sentences int) {
	if m == nil {
		return
	}
	m.Flushes.WithLabelValues(status).Inc()
	m.Sentences.Add(float64(sentences))
}

func (m *Metrics) SetBuffered(seconds float64) {
	if m == nil {
		return
	}
	m.Buffered.Set(seconds)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
