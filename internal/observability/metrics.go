package observability

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memmap",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "memmap",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	elaborations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memmap",
			Subsystem: "elaborate",
			Name:      "runs_total",
			Help:      "Elaboration runs by caller and outcome.",
		},
		[]string{"source", "outcome"},
	)
	elaboratedFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memmap",
			Subsystem: "elaborate",
			Name:      "fields_total",
			Help:      "Fields resolved by successful elaborations.",
		},
		[]string{"source"},
	)
	elaborationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "memmap",
			Subsystem: "elaborate",
			Name:      "duration_seconds",
			Help:      "Elaboration duration in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"source", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, elaborations, elaboratedFields, elaborationDuration)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordElaboration counts one run. source is the caller (cli, http) and
// outcome is elaborate.Outcome of the result.
func RecordElaboration(source, outcome string, fields int, duration time.Duration) {
	RegisterMetrics()
	elaborations.WithLabelValues(source, outcome).Inc()
	elaborationDuration.WithLabelValues(source, outcome).Observe(duration.Seconds())
	if outcome == "ok" {
		elaboratedFields.WithLabelValues(source).Add(float64(fields))
	}
}

// WriteTextfile dumps the default registry in the node exporter textfile
// format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("metrics textfile write failed (%s): %w", path, err)
	}
	return nil
}
