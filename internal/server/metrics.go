// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/pubsum/internal/fetch"
)

// Metrics holds the counters exposed on /metrics. Each Metrics owns its
// registry so tests can build several without collisions.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	fetchAttempts *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	exports       *prometheus.CounterVec
}

// NewMetrics registers the pubsum counters plus Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsum",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsum",
			Name:      "fetch_attempts_total",
			Help:      "External fetch attempts by result (ok, transient, permanent).",
		}, []string{"result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsum",
			Name:      "uploads_total",
			Help:      "Uploads by result (ok, rejected).",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubsum",
			Name:      "exports_total",
			Help:      "Exports by format.",
		}, []string{"format"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.fetchAttempts, m.uploads, m.exports,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// FetchAttemptHook counts every fetch attempt; pass it to
// fetch.WithAttemptHook.
func (m *Metrics) FetchAttemptHook() fetch.AttemptHook {
	return func(_ int, err error) {
		switch {
		case err == nil:
			m.fetchAttempts.WithLabelValues("ok").Inc()
		case fetch.IsTransient(err):
			m.fetchAttempts.WithLabelValues("transient").Inc()
		default:
			m.fetchAttempts.WithLabelValues("permanent").Inc()
		}
	}
}

func (m *Metrics) upload(ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) export(format string) {
	m.exports.WithLabelValues(format).Inc()
}

// middleware counts requests by matched route.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
