package node

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itohio/sensornode/pkg/link"
	"github.com/itohio/sensornode/pkg/probe"
)

// levelPin is a presence line the test can drive.
type levelPin struct {
	level atomic.Bool
}

func newLevelPin(level bool) *levelPin {
	p := &levelPin{}
	p.level.Store(level)
	return p
}

func (p *levelPin) Read() bool { return p.level.Load() }
func (p *levelPin) Set(l bool) { p.level.Store(l) }

type countingProbe struct {
	name string
	line string

	mu    sync.Mutex
	calls int
	order *[]string
}

func (p *countingProbe) Name() string { return p.name }

func (p *countingProbe) ReadAndReport() probe.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.order != nil {
		*p.order = append(*p.order, p.name)
	}
	return probe.Report{Line: p.line}
}

func (p *countingProbe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newCountingProbes(names ...string) ([]*countingProbe, *probe.Registry) {
	probes := make([]*countingProbe, len(names))
	list := make([]probe.Probe, len(names))
	for i, name := range names {
		probes[i] = &countingProbe{name: name, line: name + "\n"}
		list[i] = probes[i]
	}
	return probes, probe.NewRegistry(list...)
}

func connectedMock(t *testing.T) *link.Mock {
	t.Helper()
	m := link.NewMock(0)
	require.NoError(t, m.Connect())
	t.Cleanup(func() { m.Close() })
	return m
}

// nextLine waits for the next message sent over the mock.
func nextLine(t *testing.T, m *link.Mock) string {
	t.Helper()
	select {
	case msg, ok := <-m.Output():
		require.True(t, ok, "output closed")
		return string(msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no message sent within timeout")
	}
	return ""
}
