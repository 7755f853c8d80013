// Package metric provides Prometheus metrics for envlayer.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "envlayer"

// Load results used as label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	LoadsTotal   *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
	LayersRead   *prometheus.CounterVec
	KeysRetained prometheus.Gauge
	KeysInjected prometheus.Counter
	KeysSkipped  prometheus.Counter
	ReloadsTotal *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		LoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Number of completed config loads.",
		}, []string{"mode", "result"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent resolving, parsing and merging layers.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"mode"}),
		LayersRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layers_read_total",
			Help:      "Number of layer files found on disk and parsed.",
		}, []string{"layer"}),
		KeysRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys_retained",
			Help:      "Keys left after the prefix filter on the most recent load.",
		}),
		KeysInjected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_injected_total",
			Help:      "Keys written into the process environment.",
		}),
		KeysSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_skipped_total",
			Help:      "Keys not injected because the environment already had them.",
		}),
		ReloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Number of watcher-triggered reloads.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		r.LoadsTotal,
		r.LoadDuration,
		r.LayersRead,
		r.KeysRetained,
		r.KeysInjected,
		r.KeysSkipped,
		r.ReloadsTotal,
	)

	return r
}

// ObserveLoad records the outcome of one load. Safe on a nil Registry.
func (r *Registry) ObserveLoad(mode string, err error, elapsed time.Duration, layers []string, retained int) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.LoadsTotal.WithLabelValues(mode, result).Inc()
	r.LoadDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	for _, name := range layers {
		r.LayersRead.WithLabelValues(name).Inc()
	}
	r.KeysRetained.Set(float64(retained))
}

// ObserveInject records how many keys an injection wrote and skipped.
// Safe on a nil Registry.
func (r *Registry) ObserveInject(written, skipped int) {
	if r == nil {
		return
	}
	r.KeysInjected.Add(float64(written))
	r.KeysSkipped.Add(float64(skipped))
}

// ObserveReload records a watcher-triggered reload. Safe on a nil Registry.
func (r *Registry) ObserveReload(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.ReloadsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	r.ReloadsTotal.WithLabelValues(ResultOK).Inc()
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry to path in the node_exporter
// textfile collector format. The write is atomic (temp file + rename).
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
