package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	tokens   prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speechmark_requests_total",
			Help: "Annotation requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "speechmark_request_duration_seconds",
			Help:    "Wall time per annotation request.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speechmark_tokens_emitted_total",
			Help: "Token annotations written to output views.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.tokens)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}
