package metrics

import (
	"context"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "picturebot"

// Metrics collects rendering statistics on its own registry.
type Metrics struct {
	registry   *prometheus.Registry
	transforms *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	candidates *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Manipulations applied, by method and result.",
		}, []string{"method", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Time spent applying a manipulation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"method"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "srcset_candidates_total",
			Help:      "Srcset candidates rendered into a picture, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.transforms,
		m.duration,
		m.candidates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) BeforeRender(set domain.CandidateSet) {
	for _, c := range set {
		if c.Present() {
			m.candidates.WithLabelValues("rendered").Inc()
		} else {
			m.candidates.WithLabelValues("failed").Inc()
		}
	}
}

func (m *Metrics) AfterRender(entries []string) []string {
	return entries
}

func (m *Metrics) observe(method string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.transforms.WithLabelValues(method, result).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// Instrument wraps a transformer so every manipulation is counted and timed.
func (m *Metrics) Instrument(transformer port.ImageTransformer) *Transformer {
	return &Transformer{next: transformer, metrics: m}
}

type Transformer struct {
	next    port.ImageTransformer
	metrics *Metrics
}

func (t *Transformer) Transform(ctx context.Context, img *domain.Image,
	m domain.Manipulation) (*domain.Image, error) {
	start := time.Now()
	out, err := t.next.Transform(ctx, img, m)
	t.metrics.observe(m.Method, start, err)
	return out, err
}

func (t *Transformer) Convert(ctx context.Context, img *domain.Image, format string) (*domain.Image, error) {
	start := time.Now()
	out, err := t.next.Convert(ctx, img, format)
	t.metrics.observe(domain.MethodConvert, start, err)
	return out, err
}

func (t *Transformer) Methods() []string {
	return t.next.Methods()
}

// SizeArguments forwards the argument roles of the wrapped transformer, if it has any.
func (t *Transformer) SizeArguments(method string) ([]int, bool) {
	roles, ok := t.next.(port.ArgumentRoles)
	if !ok {
		return nil, false
	}
	return roles.SizeArguments(method)
}
