// Package observability assembles the tracer, logger and metric adapters
// into the provider every use case and transport receives.
package observability

import (
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

// Options lists the adapters a provider is built from. Nil members fall back
// to the nop implementations.
type Options struct {
	Tracer     observability.Tracer
	Logger     observability.Logger
	Counters   map[observability.MetricKey]observability.Counter
	Histograms map[observability.MetricKey]observability.Histogram
}

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics instruments
}

// instruments resolves keys against what was registered. Unknown keys get a
// nop instrument so a missing registration never breaks a request.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := m.counters[name]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[name]; ok {
		return h
	}
	return observability.NopHistogram()
}

func New(opts Options) observability.Observability {
	p := &provider{
		tracer: opts.Tracer,
		logger: opts.Logger,
		metrics: instruments{
			counters:   make(map[observability.MetricKey]observability.Counter, len(opts.Counters)),
			histograms: make(map[observability.MetricKey]observability.Histogram, len(opts.Histograms)),
		},
	}
	if p.tracer == nil {
		p.tracer = observability.NopTracer()
	}
	if p.logger == nil {
		p.logger = observability.NopLogger()
	}
	for k, c := range opts.Counters {
		if c != nil {
			p.metrics.counters[k] = c
		}
	}
	for k, h := range opts.Histograms {
		if h != nil {
			p.metrics.histograms[k] = h
		}
	}
	return p
}

// Scoped returns a provider sharing tel's tracer and metrics whose logger
// carries the given fields, e.g. the component name of a subsystem.
func Scoped(tel observability.Observability, fields ...observability.Field) observability.Observability {
	if tel == nil {
		tel = observability.Nop()
	}
	return scoped{Observability: tel, logger: tel.Logger().With(fields...)}
}

type scoped struct {
	observability.Observability
	logger observability.Logger
}

func (s scoped) Logger() observability.Logger { return s.logger }

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }
