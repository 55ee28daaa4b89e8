package node

import (
	"context"

	"github.com/golang/glog"

	"github.com/itohio/sensornode/pkg/command"
	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/hal"
	"github.com/itohio/sensornode/pkg/link"
	"github.com/itohio/sensornode/pkg/metrics"
	"github.com/itohio/sensornode/pkg/probe"
	"github.com/itohio/sensornode/pkg/runner"
)

// Node wires the shared state, the receive task and the polling task to a
// link.
type Node struct {
	State    *State
	Receiver *Receiver
	Engine   *Engine

	link   link.Transport
	banner string
}

// New creates a Node from the configuration. The link must already be
// connected when Run is called.
func New(cfg *config.Config, hw Hardware, t link.Transport, m *metrics.Metrics) *Node {
	registry := NewRegistry(hw, cfg.Thermistor)
	return NewWithRegistry(cfg, registry, hw.Presence, t, m)
}

// NewWithRegistry creates a Node with a custom probe table.
func NewWithRegistry(cfg *config.Config, registry *probe.Registry, presence hal.Pin, t link.Transport, m *metrics.Metrics) *Node {
	active, _ := command.ParseBits(cfg.Node.Active)

	state := NewState(Options{
		Active:        active,
		IntervalMS:    cfg.Node.IntervalMS,
		MinIntervalMS: cfg.Node.MinIntervalMS,
		Width:         registry.Len(),
	})

	receiver := NewReceiver(t, state, cfg.Serial.BufferSize, cfg.Serial.ReadTimeout, m)
	engine := NewEngine(state, registry, presence, t, m)
	receiver.OnCheck = engine.Wake

	snap := state.Snapshot()
	m.SetConfig(snap.Active, snap.IntervalMS)

	return &Node{
		State:    state,
		Receiver: receiver,
		Engine:   engine,
		link:     t,
		banner:   cfg.Node.Banner,
	}
}

// Run sends the ready banner and runs the receive and poll tasks until ctx
// is done or the link is closed.
func (n *Node) Run(ctx context.Context) error {
	if n.banner != "" {
		if err := n.link.Send([]byte(n.banner)); err != nil {
			glog.Warningf("failed to send banner: %v", err)
		}
	}

	snap := n.State.Snapshot()
	glog.Infof("node ready: active=%b interval=%dms", snap.Active, snap.IntervalMS)

	return runner.New(ctx).
		Go("receive", n.Receiver).
		Go("poll", n.Engine).
		Wait()
}
