package node

import (
	"context"

	"github.com/golang/glog"

	"github.com/itohio/sensornode/pkg/hal"
	"github.com/itohio/sensornode/pkg/link"
	"github.com/itohio/sensornode/pkg/metrics"
	"github.com/itohio/sensornode/pkg/probe"
)

// Engine is the polling task. Every tick it samples the presence line and
// sweeps the enabled probes on a falling edge or a pending check request.
type Engine struct {
	state    *State
	registry *probe.Registry
	presence hal.Pin
	out      link.Sender
	metrics  *metrics.Metrics

	// last observed presence level; starts high so a line that is low at
	// startup counts as an edge
	last bool
	wake chan struct{}
}

// NewEngine creates the polling task.
func NewEngine(state *State, registry *probe.Registry, presence hal.Pin, out link.Sender, m *metrics.Metrics) *Engine {
	return &Engine{
		state:    state,
		registry: registry,
		presence: presence,
		out:      out,
		metrics:  m,
		last:     true,
		wake:     make(chan struct{}, 1),
	}
}

// Wake schedules a tick right away instead of waiting for the interval.
func (e *Engine) Wake() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Tick runs one iteration of the state machine and reports whether a sweep
// fired. Tick must not be called concurrently with itself.
func (e *Engine) Tick() bool {
	level := e.presence.Read()
	snap := e.state.Snapshot()

	edge := e.last && !level
	e.last = level

	if !edge && !snap.ReportRequested {
		return false
	}

	trigger := metrics.TriggerCheck
	if edge {
		trigger = metrics.TriggerEdge
	}
	glog.V(2).Infof("sweep (%s) active=%b", trigger, snap.Active)

	e.Sweep(snap.Active)
	e.state.ClearReportRequest(snap)
	e.metrics.Sweep(trigger)

	return true
}

// Sweep reads every probe enabled in active, in registry order, and sends
// its report line. It returns the number of probes read.
func (e *Engine) Sweep(active uint64) int {
	count := 0
	e.registry.Each(active, func(i int, p probe.Probe) {
		rep := p.ReadAndReport()
		if rep.Err != nil {
			glog.Warningf("probe %d (%s) failed: %v", i, p.Name(), rep.Err)
			e.metrics.ProbeError(p.Name())
		}
		glog.V(4).Infof("probe %d (%s): %q", i, p.Name(), rep.Line)

		if err := e.out.Send([]byte(rep.Line)); err != nil {
			glog.Warningf("failed to send %s report: %v", p.Name(), err)
			e.metrics.SendError()
		}
		count++
	})

	if d, ok := e.out.(link.Drainer); ok && count > 0 {
		if err := d.Drain(); err != nil {
			glog.Warningf("failed to drain link: %v", err)
		}
	}
	return count
}

// Run implements runner.Task. The interval is re-read after every tick,
// so a freq: change applies from the next tick on.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.Tick()

		timer := newTimer(e.state.Snapshot().Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-e.wake:
			timer.Stop()
		}
	}
}
