package indicator

import (
	"fmt"
	"time"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/clock"
	"github.com/cjeanneret/BeaconGo/internal/hw/gpio"
)

// MaxLEDs is the number of indicator outputs on the board.
const MaxLEDs = 4

// flashes is the number of on/off blinks in a Flash pattern.
const flashes = 3

// Bank drives up to four indicator LEDs together.
// LEDs are active HIGH.
type Bank struct {
	gpio  gpio.Driver
	clock clock.Clock
	pins  []int
}

// NewBank configures pins as outputs and switches them off.
func NewBank(g gpio.Driver, c clock.Clock, pins []int) (*Bank, error) {
	if len(pins) > MaxLEDs {
		return nil, fmt.Errorf("at most %d indicator pins supported, got %d", MaxLEDs, len(pins))
	}
	for _, pin := range pins {
		_ = g.SetupPin(pin, gpio.Output)
		_ = g.WritePin(pin, gpio.Low)
	}
	return &Bank{
		gpio:  g,
		clock: c,
		pins:  append([]int(nil), pins...),
	}, nil
}

// Set switches every LED on or off.
func (b *Bank) Set(on bool) error {
	level := gpio.Level(on)
	for _, pin := range b.pins {
		if err := b.gpio.WritePin(pin, level); err != nil {
			return fmt.Errorf("indicator pin %d: %w", pin, err)
		}
	}
	return nil
}

// Flash blinks all LEDs three times over total, each on and off phase
// lasting total/6. LEDs are left off.
func (b *Bank) Flash(total time.Duration) error {
	debug.Verbose("Indicator: flashing %d LEDs over %v", len(b.pins), total)

	phase := total / (2 * flashes)
	for i := 0; i < flashes; i++ {
		if err := b.Set(true); err != nil {
			return err
		}
		b.clock.Sleep(phase)
		if err := b.Set(false); err != nil {
			return err
		}
		b.clock.Sleep(phase)
	}
	return nil
}
