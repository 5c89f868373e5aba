// Package sensor reads the robot's beacon, proximity and encoder inputs and
// normalizes them into plain values for the navigation logic.
package sensor

import (
	"fmt"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/adc"
	"github.com/cjeanneret/BeaconGo/internal/hw/gpio"
)

// BeaconState reports which beacon sensors currently detect the beacon.
type BeaconState struct {
	LeftSeen  bool
	RightSeen bool
}

// Centered reports whether both sensors see the beacon at once.
func (b BeaconState) Centered() bool {
	return b.LeftSeen && b.RightSeen
}

// Beacon reads the two beacon-direction sensors.
// IR receivers idle HIGH and pull LOW on detection, so ActiveLow is the usual setting.
type Beacon struct {
	gpio      gpio.Driver
	leftPin   int
	rightPin  int
	activeLow bool
}

// NewBeacon sets both pins up as inputs biased towards the "not seen" level.
func NewBeacon(g gpio.Driver, leftPin, rightPin int, activeLow bool) *Beacon {
	mode := gpio.InputPullDown
	if activeLow {
		mode = gpio.InputPullUp
	}
	_ = g.SetupPin(leftPin, mode)
	_ = g.SetupPin(rightPin, mode)
	return &Beacon{
		gpio:      g,
		leftPin:   leftPin,
		rightPin:  rightPin,
		activeLow: activeLow,
	}
}

// Read samples both sensors.
func (b *Beacon) Read() (BeaconState, error) {
	left, err := b.seen(b.leftPin)
	if err != nil {
		return BeaconState{}, fmt.Errorf("read left beacon: %w", err)
	}
	right, err := b.seen(b.rightPin)
	if err != nil {
		return BeaconState{}, fmt.Errorf("read right beacon: %w", err)
	}
	return BeaconState{LeftSeen: left, RightSeen: right}, nil
}

func (b *Beacon) seen(pin int) (bool, error) {
	level, err := b.gpio.ReadPin(pin)
	if err != nil {
		return false, err
	}
	if b.activeLow {
		return level == gpio.Low, nil
	}
	return level == gpio.High, nil
}

// ProximityReading holds the two 10-bit proximity intensities.
// Higher values mean a closer obstacle.
type ProximityReading struct {
	Left  uint16
	Right uint16
}

// Exceeds reports whether either side is at or above threshold.
func (p ProximityReading) Exceeds(threshold uint16) bool {
	return p.Left >= threshold || p.Right >= threshold
}

// Proximity reads the two forward proximity sensors through an ADC.
type Proximity struct {
	adc          adc.Reader
	leftChannel  int
	rightChannel int
}

func NewProximity(r adc.Reader, leftChannel, rightChannel int) *Proximity {
	return &Proximity{
		adc:          r,
		leftChannel:  leftChannel,
		rightChannel: rightChannel,
	}
}

// Read converts the left channel, then the right one.
func (p *Proximity) Read() (ProximityReading, error) {
	left, err := p.adc.ReadChannel(p.leftChannel)
	if err != nil {
		return ProximityReading{}, fmt.Errorf("read left proximity: %w", err)
	}
	right, err := p.adc.ReadChannel(p.rightChannel)
	if err != nil {
		return ProximityReading{}, fmt.Errorf("read right proximity: %w", err)
	}
	debug.Verbose("Proximity: left=%d right=%d", left, right)
	return ProximityReading{Left: left, Right: right}, nil
}

// Encoder exposes the raw logic level of one wheel encoder.
// The signal must already be clean; no debouncing is done.
type Encoder struct {
	gpio gpio.Driver
	pin  int
}

func NewEncoder(g gpio.Driver, pin int) *Encoder {
	_ = g.SetupPin(pin, gpio.Input)
	return &Encoder{gpio: g, pin: pin}
}

// Level returns true when the encoder line is HIGH.
func (e *Encoder) Level() (bool, error) {
	level, err := e.gpio.ReadPin(e.pin)
	if err != nil {
		return false, fmt.Errorf("read encoder pin %d: %w", e.pin, err)
	}
	return level == gpio.High, nil
}
