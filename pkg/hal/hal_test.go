package hal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAveraging(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		values []int
		want   int
	}{
		{"single read", 1, []int{100}, 100},
		{"zero behaves as single", 0, []int{7}, 7},
		{"mean of four", 4, []int{100, 200, 300, 400}, 250},
		{"integer division", 3, []int{1, 1, 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			adc := ADCFunc(func() (int, error) {
				v := tt.values[calls]
				calls++
				return v, nil
			})

			got, err := Averaging{ADC: adc, N: tt.n}.ReadRaw()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.values), calls)
		})
	}
}

func TestAveraging_Error(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	adc := ADCFunc(func() (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return 10, nil
	})

	_, err := Averaging{ADC: adc, N: 5}.ReadRaw()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestIIOChannel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in_voltage2_raw")
	require.NoError(t, os.WriteFile(path, []byte("2048\n"), 0644))

	v, err := IIOChannel{Path: path}.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, 2048, v)

	require.NoError(t, os.WriteFile(path, []byte("n/a\n"), 0644))
	_, err = IIOChannel{Path: path}.ReadRaw()
	assert.Error(t, err)

	_, err = IIOChannel{Path: filepath.Join(dir, "missing")}.ReadRaw()
	assert.Error(t, err)
}

func TestPinFunc(t *testing.T) {
	level := true
	p := PinFunc(func() bool { return level })
	assert.True(t, p.Read())
	level = false
	assert.False(t, p.Read())
}
