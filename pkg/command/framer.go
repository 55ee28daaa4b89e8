package command

import "time"

// Framer assembles a message from bytes that arrive one at a time, as on a
// UART polled from a main loop. A message ends when the line has been idle
// for the idle gap or the buffer is full.
//
// The returned message aliases the internal buffer and is valid until the
// next Push.
type Framer struct {
	buf  []byte
	n    int
	idle time.Duration
	last time.Time
}

// NewFramer creates a Framer holding at most size bytes per message.
func NewFramer(size int, idle time.Duration) *Framer {
	if size <= 0 {
		size = 1
	}
	return &Framer{buf: make([]byte, size), idle: idle}
}

// Push adds one received byte. It returns the message when b filled the
// buffer.
func (f *Framer) Push(b byte, now time.Time) ([]byte, bool) {
	f.buf[f.n] = b
	f.n++
	f.last = now

	if f.n < len(f.buf) {
		return nil, false
	}
	return f.flush(), true
}

// Poll returns the pending message once the line has been idle long enough.
func (f *Framer) Poll(now time.Time) ([]byte, bool) {
	if f.n == 0 || now.Sub(f.last) < f.idle {
		return nil, false
	}
	return f.flush(), true
}

// Pending returns the number of buffered bytes.
func (f *Framer) Pending() int {
	return f.n
}

func (f *Framer) flush() []byte {
	msg := f.buf[:f.n]
	f.n = 0
	return msg
}
