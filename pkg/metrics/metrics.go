// Package metrics exposes the node's Prometheus instrumentation.
//
// All methods are safe on a nil *Metrics, which disables instrumentation.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sweep triggers.
const (
	TriggerEdge  = "edge"
	TriggerCheck = "check"
)

// Metrics holds the node collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	commands         prometheus.Counter
	intervalRejected prometheus.Counter
	sweeps           *prometheus.CounterVec
	probeErrors      *prometheus.CounterVec
	sendErrors       prometheus.Counter
	interval         prometheus.Gauge
	enabled          prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_commands_received_total",
			Help: "Messages received over the link and applied to the configuration.",
		}),
		intervalRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_interval_rejected_total",
			Help: "freq: requests below the minimum poll interval.",
		}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensornode_sweeps_total",
			Help: "Completed probe sweeps by trigger.",
		}, []string{"trigger"}),
		probeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensornode_probe_errors_total",
			Help: "Probe reads reported as ERROR.",
		}, []string{"probe"}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_send_errors_total",
			Help: "Report lines that could not be written to the link.",
		}),
		interval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensornode_poll_interval_ms",
			Help: "Current poll interval in milliseconds.",
		}),
		enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensornode_enabled_sensors",
			Help: "Current enabled sensor bit pattern.",
		}),
	}

	reg.MustRegister(m.commands, m.intervalRejected, m.sweeps, m.probeErrors, m.sendErrors, m.interval, m.enabled)
	return m
}

// CommandReceived counts one applied message.
func (m *Metrics) CommandReceived() {
	if m == nil {
		return
	}
	m.commands.Inc()
}

// IntervalRejected counts one interval request below the floor.
func (m *Metrics) IntervalRejected() {
	if m == nil {
		return
	}
	m.intervalRejected.Inc()
}

// Sweep counts one completed sweep for trigger.
func (m *Metrics) Sweep(trigger string) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(trigger).Inc()
}

// ProbeError counts one failed read of the named probe.
func (m *Metrics) ProbeError(probe string) {
	if m == nil {
		return
	}
	m.probeErrors.WithLabelValues(probe).Inc()
}

// SendError counts one failed transmit.
func (m *Metrics) SendError() {
	if m == nil {
		return
	}
	m.sendErrors.Inc()
}

// SetConfig publishes the current enabled pattern and interval.
func (m *Metrics) SetConfig(enabled, intervalMS uint64) {
	if m == nil {
		return
	}
	m.enabled.Set(float64(enabled))
	m.interval.Set(float64(intervalMS))
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Server serves Handler on Addr until the context is cancelled.
type Server struct {
	Addr    string
	Metrics *Metrics
}

// Run implements runner.Task.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Metrics.Handler())

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		glog.Infof("metrics listening on %s", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Warningf("metrics shutdown: %v", err)
		}
		return ctx.Err()
	}
}
