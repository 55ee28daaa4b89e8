package link

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the UART speed of the node.
	DefaultBaudRate = 9600
	// DefaultReadTimeout is the first-byte wait and the idle gap that ends a
	// message when Receive is given no timeout.
	DefaultReadTimeout = 100 * time.Millisecond
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a UART transport backed by go.bug.st/serial.
//
// Send and Receive do not share a lock, so a reader blocked in Receive never
// delays a concurrent Send.
type Serial struct {
	port     string
	baudRate int

	conn      serial.Port
	mu        sync.RWMutex
	connected bool

	writeMu sync.Mutex

	readMu      sync.Mutex
	readTimeout time.Duration
}

// NewSerial creates a Serial transport for the named port.
func NewSerial(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port with 8N1 framing and no flow control.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return ErrAlreadyConnected
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.conn = port
	s.connected = true
	s.readTimeout = 0

	return nil
}

// Close closes the port. A Receive in progress returns with an error.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			glog.Warningf("Error closing serial port: %v", err)
		}
		s.conn = nil
	}

	s.connected = false

	return nil
}

// IsConnected returns whether the port is currently open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Send implements Sender.
func (s *Serial) Send(p []byte) error {
	conn, err := s.current()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := conn.Write(p); err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	return nil
}

// Drain implements Drainer.
func (s *Serial) Drain() error {
	conn, err := s.current()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.Drain()
}

// Receive implements Receiver. It waits up to timeout for the first byte,
// then keeps reading until buf is full or the line stays idle for timeout,
// so a message trickling in at UART speed is returned in one piece.
func (s *Serial) Receive(buf []byte, timeout time.Duration) (int, error) {
	conn, err := s.current()
	if err != nil {
		return 0, err
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	s.readMu.Lock()
	defer s.readMu.Unlock()

	if timeout != s.readTimeout {
		if err := conn.SetReadTimeout(timeout); err != nil {
			return 0, fmt.Errorf("failed to set read timeout: %w", err)
		}
		s.readTimeout = timeout
	}

	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		if err != nil {
			if n > 0 {
				// deliver what arrived, the next call reports the error
				return n, nil
			}
			if !s.IsConnected() {
				return 0, ErrNotConnected
			}
			return 0, fmt.Errorf("failed to read from serial port: %w", err)
		}
		if m == 0 {
			break
		}
		n += m
	}
	return n, nil
}

func (s *Serial) current() (serial.Port, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return nil, ErrNotConnected
	}
	return s.conn, nil
}
