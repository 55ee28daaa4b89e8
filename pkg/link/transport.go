// Package link carries the node's text protocol over a byte transport.
package link

import (
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned by operations on a closed transport.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Connect on an open transport.
	ErrAlreadyConnected = errors.New("already connected")
)

// Sender transmits raw bytes.
type Sender interface {
	Send(p []byte) error
}

// Receiver reads one message into buf. It waits up to timeout for data and
// the message ends when the line is idle for timeout or buf is full. A
// timeout with no data returns 0 and a nil error. Bytes that do not fit into
// buf are not part of this message.
type Receiver interface {
	Receive(buf []byte, timeout time.Duration) (int, error)
}

// Drainer is implemented by transports that can block until queued output
// has left the wire.
type Drainer interface {
	Drain() error
}

// Transport defines the byte channel between the node and its peer (real or mocked).
type Transport interface {
	Connect() error
	Close() error
	IsConnected() bool
	Sender
	Receiver
}

// Ensure Serial implements Transport.
var _ Transport = (*Serial)(nil)

// Ensure Mock implements Transport.
var _ Transport = (*Mock)(nil)

// Ensure Mirror implements Transport.
var _ Transport = (*Mirror)(nil)
