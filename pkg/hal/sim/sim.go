// Package sim simulates the node hardware for development without a board.
package sim

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/hal"
	"github.com/itohio/sensornode/pkg/probe"
)

// Board is a simulated set of inputs driven by the wall clock.
//
// An object passes the presence sensor once every PresencePeriod and stays
// for PresenceDuration. Trigger A toggles every TriggerPeriod, trigger B is
// its inverse. The ADC returns the code of the configured temperature plus
// a little noise.
type Board struct {
	cfg   config.MockConfig
	model probe.Thermistor

	mu    sync.Mutex
	start time.Time
	now   func() time.Time
}

// New creates a simulated board. A nil cfg uses the defaults.
func New(cfg *config.MockConfig, model probe.Thermistor) *Board {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	return newBoard(*cfg, model, time.Now)
}

func newBoard(cfg config.MockConfig, model probe.Thermistor, now func() time.Time) *Board {
	return &Board{
		cfg:   cfg,
		model: model,
		start: now(),
		now:   now,
	}
}

func (b *Board) elapsed() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().Sub(b.start)
}

// Presence returns the active-low presence line.
func (b *Board) Presence() hal.Pin {
	return hal.PinFunc(func() bool {
		period := b.cfg.PresencePeriod
		if period <= 0 {
			return true
		}
		// object arrives at the end of every period
		phase := b.elapsed() % period
		return phase < period-b.cfg.PresenceDuration
	})
}

// TriggerA returns the first auxiliary line.
func (b *Board) TriggerA() hal.Pin {
	return hal.PinFunc(func() bool { return b.trigger() })
}

// TriggerB returns the second auxiliary line.
func (b *Board) TriggerB() hal.Pin {
	return hal.PinFunc(func() bool { return !b.trigger() })
}

func (b *Board) trigger() bool {
	period := b.cfg.TriggerPeriod
	if period <= 0 {
		return true
	}
	return (b.elapsed()/period)%2 == 0
}

// ADC returns the simulated thermistor divider.
func (b *Board) ADC() hal.ADC {
	return hal.ADCFunc(func() (int, error) {
		t := float32(b.elapsed().Seconds())
		noise := (math32.Sin(t*1.7) + math32.Cos(t*2.3)) * b.cfg.NoiseLevel * 0.5
		return b.model.Raw(b.cfg.Temperature + noise), nil
	})
}
