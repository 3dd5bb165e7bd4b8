// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics instruments probes with Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

const namespace = "availability"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	Registry *prometheus.Registry

	checks    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  *prometheus.GaugeVec
	resolvers *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry that also exposes the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Probe executions by method, status and error kind.",
		}, []string{"method", "status", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Probe execution time by method.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"method"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "checks_in_flight",
			Help:      "Probe executions currently running.",
		}, []string{"method"}),
		resolvers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolver_up",
			Help:      "Whether a DNS resolver answered its last health check.",
		}, []string{"server"}),
	}

	m.Registry.MustRegister(
		m.checks,
		m.duration,
		m.inFlight,
		m.resolvers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware wraps next so every execution is counted and timed. It
// matches the signature expected by availability.WithMiddleware.
func (m *Metrics) Middleware(next availability.Probe) availability.Probe {
	return &instrumentedProbe{next: next, m: m}
}

// ObserveResolvers records the outcome of a resolver health check.
func (m *Metrics) ObserveResolvers(statuses []availability.ResolverStatus) {
	for _, s := range statuses {
		up := 0.0
		if s.Online {
			up = 1
		}
		m.resolvers.WithLabelValues(s.Server).Set(up)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

type instrumentedProbe struct {
	next availability.Probe
	m    *Metrics
}

func (p *instrumentedProbe) Probe(ctx context.Context, domain string) availability.DomainResult {
	method := string(p.next.Method())
	gauge := p.m.inFlight.WithLabelValues(method)
	gauge.Inc()
	defer gauge.Dec()

	start := time.Now()
	r := p.next.Probe(ctx, domain)
	p.m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	p.m.checks.WithLabelValues(method, string(r.Status), string(r.Kind())).Inc()
	return r
}

func (p *instrumentedProbe) Method() availability.CheckMethod       { return p.next.Method() }
func (p *instrumentedProbe) CanHandle(domain string) bool           { return p.next.CanHandle(domain) }
func (p *instrumentedProbe) Config() availability.ProbeConfig       { return p.next.Config() }
func (p *instrumentedProbe) SetConfig(cfg availability.ProbeConfig) { p.next.SetConfig(cfg) }
