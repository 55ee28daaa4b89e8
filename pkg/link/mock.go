package link

import (
	"sync"
	"time"
)

// DefaultBufferSize is the default depth of the mock's message queues.
const DefaultBufferSize = 100

// Mock is an in-memory transport. Messages injected with Inject are returned
// by Receive one per call; everything sent is recorded and copied to Output.
type Mock struct {
	inbound chan []byte
	output  chan []byte
	done    chan struct{}

	mu        sync.RWMutex
	connected bool
	sent      []string
}

// NewMock creates a Mock with queues of bufSize messages.
func NewMock(bufSize int) *Mock {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return &Mock{
		inbound: make(chan []byte, bufSize),
		output:  make(chan []byte, bufSize),
		done:    make(chan struct{}),
	}
}

// Connect simulates opening the link.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}
	select {
	case <-m.done:
		// closed mocks cannot be reopened
		return ErrNotConnected
	default:
	}

	m.connected = true
	return nil
}

// Close stops the mock and closes the Output channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.connected = false
	close(m.done)
	close(m.output)

	return nil
}

// IsConnected returns whether the mock is open.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Inject queues an inbound message. It returns false when the queue is full.
func (m *Mock) Inject(msg []byte) bool {
	select {
	case m.inbound <- append([]byte(nil), msg...):
		return true
	default:
		return false
	}
}

// Output returns the channel receiving a copy of every sent message.
func (m *Mock) Output() <-chan []byte {
	return m.output
}

// Sent returns everything sent so far, one entry per Send call.
func (m *Mock) Sent() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.sent...)
}

// Send implements Sender.
func (m *Mock) Send(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}

	m.sent = append(m.sent, string(p))
	select {
	case m.output <- append([]byte(nil), p...):
	default:
		// Output not drained, the message is still in Sent.
	}
	return nil
}

// Receive implements Receiver.
func (m *Mock) Receive(buf []byte, timeout time.Duration) (int, error) {
	if !m.IsConnected() {
		return 0, ErrNotConnected
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-m.inbound:
		return copy(buf, msg), nil
	case <-timer.C:
		return 0, nil
	case <-m.done:
		return 0, ErrNotConnected
	}
}
