// Package node runs the sensor node: it applies commands received over the
// link to the shared configuration and sweeps the enabled probes on a
// presence edge or an explicit check request.
package node

import (
	"sync"
	"time"

	"github.com/itohio/sensornode/pkg/command"
)

// DefaultMinInterval is the smallest poll interval accepted, in milliseconds.
const DefaultMinInterval = 10

// Options is the startup configuration of a State.
type Options struct {
	Active        uint64 // enabled-sensor pattern, bit i = probe i
	IntervalMS    uint64
	MinIntervalMS uint64
	Width         int // number of registered probes, extra bits are dropped; 0 keeps all 64
}

// Snapshot is a consistent copy of the shared configuration.
type Snapshot struct {
	Active          uint64
	IntervalMS      uint64
	ReportRequested bool

	// seq identifies the last applied check request.
	seq uint64
}

// Interval returns the poll interval as a duration.
func (s Snapshot) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// Result describes what an Apply changed.
type Result struct {
	ActiveChanged    bool
	IntervalChanged  bool
	IntervalRejected bool
	ReportRequested  bool
}

// State is the node configuration shared by the receive and poll tasks.
// One mutex guards all fields; no method blocks while holding it.
type State struct {
	mu sync.Mutex

	active          uint64
	intervalMS      uint64
	reportRequested bool
	seq             uint64

	mask        uint64
	minInterval uint64
}

// NewState creates a State. The initial interval is raised to the minimum
// when it is below it.
func NewState(opts Options) *State {
	minInterval := opts.MinIntervalMS
	if minInterval == 0 {
		minInterval = DefaultMinInterval
	}
	interval := opts.IntervalMS
	if interval < minInterval {
		interval = minInterval
	}

	mask := ^uint64(0)
	if opts.Width > 0 && opts.Width < 64 {
		mask = (uint64(1) << uint(opts.Width)) - 1
	}

	return &State{
		active:      opts.Active & mask,
		intervalMS:  interval,
		mask:        mask,
		minInterval: minInterval,
	}
}

// Apply merges an update. Absent fields are left untouched, an interval
// below the minimum is ignored and a check request is sticky until cleared
// by ClearReportRequest.
func (s *State) Apply(u command.Update) Result {
	var res Result

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.HasActive {
		active := u.Active & s.mask
		res.ActiveChanged = active != s.active
		s.active = active
	}

	if u.HasInterval {
		if u.Interval >= s.minInterval {
			res.IntervalChanged = u.Interval != s.intervalMS
			s.intervalMS = u.Interval
		} else {
			res.IntervalRejected = true
		}
	}

	if u.Check {
		s.reportRequested = true
		s.seq++
		res.ReportRequested = true
	}

	return res
}

// Snapshot returns the three shared fields read under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Active:          s.active,
		IntervalMS:      s.intervalMS,
		ReportRequested: s.reportRequested,
		seq:             s.seq,
	}
}

// ClearReportRequest consumes the report request after a sweep decided from
// snap. A check applied after snap was taken is kept so that it triggers
// the next sweep. It reports whether the flag was cleared.
func (s *State) ClearReportRequest(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != snap.seq {
		return false
	}
	cleared := s.reportRequested
	s.reportRequested = false
	return cleared
}
