// Package probe implements the node's sensor probes and the ordered registry
// that maps them to bits of the enabled-sensor pattern.
package probe

import "errors"

var (
	// ErrNoSignal is returned when the converter sample carries no usable voltage.
	ErrNoSignal = errors.New("no signal")
	// ErrOutOfRange is returned when a reading converts to a non-physical value.
	ErrOutOfRange = errors.New("reading out of range")
)

// Report is the outcome of one probe read: the line to transmit and, on
// failure, the cause. Line is always set.
type Report struct {
	Line string
	Err  error
}

// Probe acquires one reading and formats it as a newline terminated line.
// A failing read yields an ERROR line, never a panic.
type Probe interface {
	Name() string
	ReadAndReport() Report
}

// Registry is the fixed, ordered list of probes. The probe at index i is
// controlled by bit i of the enabled-sensor pattern.
type Registry struct {
	probes []Probe
}

// NewRegistry registers probes in the given order.
func NewRegistry(probes ...Probe) *Registry {
	return &Registry{probes: append([]Probe(nil), probes...)}
}

// Len returns the number of registered probes.
func (r *Registry) Len() int {
	return len(r.probes)
}

// Probe returns the probe at index i.
func (r *Registry) Probe(i int) Probe {
	return r.probes[i]
}

// Mask returns the bit mask covering every registered probe.
func (r *Registry) Mask() uint64 {
	if len(r.probes) >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(len(r.probes))) - 1
}

// Each calls fn for every probe enabled in pattern, in registry order.
// Disabled probes are not touched.
func (r *Registry) Each(pattern uint64, fn func(i int, p Probe)) {
	for i, p := range r.probes {
		if i < 64 && pattern&(uint64(1)<<uint(i)) != 0 {
			fn(i, p)
		}
	}
}
