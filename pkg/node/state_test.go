package node

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/sensornode/pkg/command"
)

func defaultState() *State {
	return NewState(Options{Active: 0b0011, IntervalMS: 10000, Width: 4})
}

func apply(s *State, msg string) Result {
	return s.Apply(command.Parse([]byte(msg)))
}

func TestNewState(t *testing.T) {
	snap := defaultState().Snapshot()
	assert.Equal(t, uint64(0b0011), snap.Active)
	assert.Equal(t, uint64(10000), snap.IntervalMS)
	assert.False(t, snap.ReportRequested)
	assert.Equal(t, "10s", snap.Interval().String())
}

func TestNewState_Defaults(t *testing.T) {
	s := NewState(Options{Active: ^uint64(0), IntervalMS: 3})
	snap := s.Snapshot()
	assert.Equal(t, uint64(DefaultMinInterval), snap.IntervalMS, "initial interval raised to the minimum")
	assert.Equal(t, ^uint64(0), snap.Active, "zero width keeps every bit")
}

func TestState_Apply(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		want       Result
		wantActive uint64
		wantFreq   uint64
	}{
		{
			name:       "active and freq",
			msg:        "active:0101 freq:5000",
			want:       Result{ActiveChanged: true, IntervalChanged: true},
			wantActive: 0b0101,
			wantFreq:   5000,
		},
		{
			name:       "freq below minimum is ignored",
			msg:        "freq:5",
			want:       Result{IntervalRejected: true},
			wantActive: 0b0011,
			wantFreq:   10000,
		},
		{
			name:       "freq at minimum is accepted",
			msg:        "freq:10",
			want:       Result{IntervalChanged: true},
			wantActive: 0b0011,
			wantFreq:   10,
		},
		{
			name:       "same values are not changes",
			msg:        "active:0011 freq:10000",
			want:       Result{},
			wantActive: 0b0011,
			wantFreq:   10000,
		},
		{
			name:       "extra bits are dropped",
			msg:        "active:111000",
			want:       Result{ActiveChanged: true},
			wantActive: 0b1000,
			wantFreq:   10000,
		},
		{
			name:       "all off",
			msg:        "active:0",
			want:       Result{ActiveChanged: true},
			wantActive: 0,
			wantFreq:   10000,
		},
		{
			name:       "noise",
			msg:        "hello node",
			want:       Result{},
			wantActive: 0b0011,
			wantFreq:   10000,
		},
		{
			name:       "check only",
			msg:        "check",
			want:       Result{ReportRequested: true},
			wantActive: 0b0011,
			wantFreq:   10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultState()
			got := apply(s, tt.msg)
			assert.Equal(t, tt.want, got)

			snap := s.Snapshot()
			assert.Equal(t, tt.wantActive, snap.Active)
			assert.Equal(t, tt.wantFreq, snap.IntervalMS)
			assert.Equal(t, tt.want.ReportRequested, snap.ReportRequested)
		})
	}
}

func TestState_ReportRequestConsumedOnce(t *testing.T) {
	s := defaultState()
	apply(s, "check")
	apply(s, "check")

	snap := s.Snapshot()
	require.True(t, snap.ReportRequested)

	assert.True(t, s.ClearReportRequest(snap))
	assert.False(t, s.Snapshot().ReportRequested)
	assert.False(t, s.ClearReportRequest(s.Snapshot()), "nothing left to clear")
}

func TestState_CheckDuringSweepIsKept(t *testing.T) {
	s := defaultState()
	apply(s, "check")
	snap := s.Snapshot()

	// arrives while the sweep decided from snap is running
	apply(s, "check")

	assert.False(t, s.ClearReportRequest(snap))
	next := s.Snapshot()
	assert.True(t, next.ReportRequested)
	assert.True(t, s.ClearReportRequest(next))
}

func TestState_ClearWithoutCheck(t *testing.T) {
	s := defaultState()
	snap := s.Snapshot()
	assert.False(t, s.ClearReportRequest(snap))
	assert.False(t, s.Snapshot().ReportRequested)
}

func TestState_ConcurrentSnapshotsAreConsistent(t *testing.T) {
	s := NewState(Options{Active: 0, IntervalMS: 100, Width: 4})

	const rounds = 2000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			active := uint64(i & 0xF)
			s.Apply(command.Update{
				Active: active, HasActive: true, ActiveWidth: 4,
				Interval: 100 + active, HasInterval: true,
			})
		}
	}()

	inconsistent := 0
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			snap := s.Snapshot()
			if snap.IntervalMS != 100+snap.Active {
				inconsistent++
			}
		}
	}()

	wg.Wait()
	assert.Zero(t, inconsistent)
}
