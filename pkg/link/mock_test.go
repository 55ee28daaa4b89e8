package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMock(t *testing.T) {
	m := NewMock(10)
	assert.NotNil(t, m)
	assert.Equal(t, 10, cap(m.inbound))
	assert.False(t, m.IsConnected())

	m = NewMock(0)
	assert.Equal(t, DefaultBufferSize, cap(m.inbound))
}

func TestMock_NotConnected(t *testing.T) {
	m := NewMock(0)

	err := m.Send([]byte("x"))
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = m.Receive(make([]byte, 8), time.Millisecond)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestMock_Connect_AlreadyConnected(t *testing.T) {
	m := NewMock(0)
	require.NoError(t, m.Connect())

	err := m.Connect()
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestMock_Close_NotConnected(t *testing.T) {
	m := NewMock(0)
	assert.NoError(t, m.Close())
}

func TestMock_SendRecords(t *testing.T) {
	m := NewMock(0)
	require.NoError(t, m.Connect())

	require.NoError(t, m.Send([]byte("Klaar:")))
	require.NoError(t, m.Send([]byte("Object detected\n")))

	assert.Equal(t, []string{"Klaar:", "Object detected\n"}, m.Sent())
	assert.Equal(t, "Klaar:", string(<-m.Output()))
	assert.Equal(t, "Object detected\n", string(<-m.Output()))
}

func TestMock_Receive(t *testing.T) {
	m := NewMock(0)
	require.NoError(t, m.Connect())

	buf := make([]byte, 64)

	n, err := m.Receive(buf, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "timeout without data")

	assert.True(t, m.Inject([]byte("active:0101 freq:5000")))
	n, err = m.Receive(buf, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "active:0101 freq:5000", string(buf[:n]))
}

func TestMock_ReceiveTruncates(t *testing.T) {
	m := NewMock(0)
	require.NoError(t, m.Connect())

	m.Inject([]byte("freq:12345"))
	buf := make([]byte, 7)
	n, err := m.Receive(buf, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "freq:12", string(buf[:n]))
}

func TestMock_InjectFull(t *testing.T) {
	m := NewMock(1)
	assert.True(t, m.Inject([]byte("a")))
	assert.False(t, m.Inject([]byte("b")))
}

func TestMock_CannotReconnect(t *testing.T) {
	m := NewMock(0)
	require.NoError(t, m.Connect())
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Connect(), ErrNotConnected)
}
