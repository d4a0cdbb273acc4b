package prometrics

import (
	"sync"

	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry owns the prometheus vectors behind the observability metric ports.
type Registry struct {
	reg        prometheus.Registerer
	namespace  string
	subsystem  string
	counters   sync.Map // MetricKey -> *prometheus.CounterVec
	histograms sync.Map // MetricKey -> *prometheus.HistogramVec
}

// New returns a registry that registers its vectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace, subsystem string) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Registry{reg: reg, namespace: namespace, subsystem: subsystem}
}

// Register creates and registers a vector for every spec.
func (r *Registry) Register(counters, histograms []observability.MetricSpec) error {
	for _, spec := range counters {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace, Subsystem: r.subsystem, Name: string(spec.Key), Help: spec.Help,
		}, spec.Labels)
		if err := r.reg.Register(cv); err != nil {
			return err
		}
		r.counters.Store(spec.Key, cv)
	}
	for _, spec := range histograms {
		buckets := spec.Buckets
		if buckets == nil {
			buckets = prometheus.DefBuckets
		}
		hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace, Subsystem: r.subsystem, Name: string(spec.Key), Help: spec.Help, Buckets: buckets,
		}, spec.Labels)
		if err := r.reg.Register(hv); err != nil {
			return err
		}
		r.histograms.Store(spec.Key, hv)
	}
	return nil
}

// Counter returns the registered counter, or a no-op for unknown keys.
func (r *Registry) Counter(name observability.MetricKey) observability.Counter {
	if v, ok := r.counters.Load(name); ok {
		return &counter{v: v.(*prometheus.CounterVec)}
	}
	return observability.NopCounter()
}

func (r *Registry) Histogram(name observability.MetricKey) observability.Histogram {
	if v, ok := r.histograms.Load(name); ok {
		return &histogram{v: v.(*prometheus.HistogramVec)}
	}
	return observability.NopHistogram()
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelMap(labels)).Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.With(labelMap(labels)).Observe(v)
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}
