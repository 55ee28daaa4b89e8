package node

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/itohio/sensornode/pkg/command"
	"github.com/itohio/sensornode/pkg/link"
	"github.com/itohio/sensornode/pkg/metrics"
)

const (
	// DefaultBufferSize caps a single received message.
	DefaultBufferSize = 1024
	// DefaultReceiveTimeout bounds one transport read.
	DefaultReceiveTimeout = 100 * time.Millisecond
)

// Receiver is the receive task: it reads messages from the link, parses them
// and applies the resulting updates to the State.
type Receiver struct {
	link    link.Receiver
	state   *State
	metrics *metrics.Metrics
	bufSize int
	timeout time.Duration

	// OnCheck, when set, is called after a message containing check was applied.
	OnCheck func()
}

// NewReceiver creates a receive task. Zero bufSize and timeout use defaults.
func NewReceiver(r link.Receiver, state *State, bufSize int, timeout time.Duration, m *metrics.Metrics) *Receiver {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if timeout <= 0 {
		timeout = DefaultReceiveTimeout
	}
	return &Receiver{
		link:    r,
		state:   state,
		metrics: m,
		bufSize: bufSize,
		timeout: timeout,
	}
}

// Handle parses one message and applies it.
func (r *Receiver) Handle(msg []byte) Result {
	glog.Infof("Received: %s", msg)

	u := command.Parse(msg)
	res := r.state.Apply(u)

	r.metrics.CommandReceived()
	if res.IntervalRejected {
		r.metrics.IntervalRejected()
		glog.Warningf("rejected poll interval %d ms", u.Interval)
	}

	snap := r.state.Snapshot()
	r.metrics.SetConfig(snap.Active, snap.IntervalMS)
	if res.ActiveChanged || res.IntervalChanged {
		glog.Infof("active sensors %b, poll interval %d ms", snap.Active, snap.IntervalMS)
	}

	if res.ReportRequested && r.OnCheck != nil {
		r.OnCheck()
	}
	return res
}

// Run implements runner.Task. It returns when ctx is done or the link
// is closed; other read errors are logged and the loop continues.
func (r *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, r.bufSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.link.Receive(buf, r.timeout)
		if err != nil {
			if errors.Is(err, link.ErrNotConnected) {
				return err
			}
			glog.Warningf("receive failed: %v", err)
			// back off for one timeout so a failing port does not spin
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.timeout):
			}
			continue
		}
		if n == 0 {
			continue
		}

		r.Handle(buf[:n])
	}
}
