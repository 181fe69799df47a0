// Package metrics exposes the pipeline's Prometheus collectors.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resume_sieve"

// Registry holds every collector of this package. It is separate from the default
// registry so textfile dumps contain pipeline metrics only.
var Registry = prometheus.NewRegistry()

var (
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Processed documents by outcome",
		},
		[]string{"outcome"}, // added / replaced / skipped / failed
	)

	ExtractionAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_attempts_total",
			Help:      "Calls to the extraction service by result",
		},
		[]string{"provider", "result"}, // success / transient / error
	)

	ExtractionRepairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_repairs_total",
			Help:      "Replies that only parsed after trailing comma cleanup",
		},
	)

	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of a single extraction service call",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			DocumentsTotal,
			ExtractionAttemptsTotal,
			ExtractionRepairsTotal,
			ExtractionDuration,
		)
	})
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func WriteTextfile(path string) error {
	Register()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
