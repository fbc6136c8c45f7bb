// Package metrics exposes linekv server metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// summaryObjectives returns the quantiles tracked by duration summaries.
func summaryObjectives() map[float64]float64 {
	return map[float64]float64{
		0.5:  0.010,
		0.9:  0.010,
		0.99: 0.001,
	}
}

// Collector records server events as Prometheus metrics
type Collector struct {
	commands    *prometheus.CounterVec
	durations   *prometheus.SummaryVec
	connections prometheus.Counter
	inflight    prometheus.Gauge
	errors      *prometheus.CounterVec
}

// New registers the linekv metrics on reg
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		// commands counts processed requests by command kind.
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linekv_commands_total",
			Help: "Total number of processed commands",
		}, []string{"command"}),

		// durations summarizes the time from dispatch to reply.
		durations: factory.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "linekv_command_duration_seconds",
			Help:       "Summarizes the time to execute a command (in seconds)",
			Objectives: summaryObjectives(),
		}, []string{"command"}),

		connections: factory.NewCounter(prometheus.CounterOpts{
			Name: "linekv_connections_total",
			Help: "Total number of accepted connections",
		}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linekv_connections_inflight",
			Help: "The number of connections currently open",
		}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linekv_errors_total",
			Help: "Total number of errors by type",
		}, []string{"type"}),
	}
}

// RecordCommandProcessed records one executed command
func (c *Collector) RecordCommandProcessed(cmd string, duration time.Duration) {
	c.commands.WithLabelValues(cmd).Inc()
	c.durations.WithLabelValues(cmd).Observe(duration.Seconds())
}

// RecordConnection records an accepted connection
func (c *Collector) RecordConnection() {
	c.connections.Inc()
	c.inflight.Inc()
}

// RecordDisconnection records a closed connection
func (c *Collector) RecordDisconnection() {
	c.inflight.Dec()
}

// RecordError records an error of the given type
func (c *Collector) RecordError(errorType string) {
	c.errors.WithLabelValues(errorType).Inc()
}

// Handler returns an HTTP handler serving the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
