package motor

import (
	"fmt"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/gpio"
)

// Direction is a drive intent for both wheels.
type Direction int

const (
	Coast Direction = iota // all lines LOW, wheels freewheel
	Forward
	Reverse
	Brake // all lines HIGH, both wheels shorted
	TurnLeft
	TurnRight
)

func (d Direction) String() string {
	switch d {
	case Coast:
		return "coast"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Brake:
		return "brake"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Wheel is one H-bridge channel.
type Wheel struct {
	In1Pin int
	In2Pin int
	PWMPin int // enable/speed pin (BCM). 0 = not used.
}

// Config holds the hardware configuration of the dual H-bridge.
type Config struct {
	Left      Wheel
	Right     Wheel
	PWMFreqHz int
}

// wheelState is the pair of control levels for one channel.
type wheelState struct {
	in1, in2 gpio.Level
}

var (
	wheelForward = wheelState{gpio.Low, gpio.High}
	wheelReverse = wheelState{gpio.High, gpio.Low}
	wheelBrake   = wheelState{gpio.High, gpio.High}
	wheelCoast   = wheelState{gpio.Low, gpio.Low}
)

// levels returns the (right, left) channel states realizing d.
// Pivots brake the inner wheel and drive the outer one forward.
func levels(d Direction) (right, left wheelState, err error) {
	switch d {
	case Coast:
		return wheelCoast, wheelCoast, nil
	case Forward:
		return wheelForward, wheelForward, nil
	case Reverse:
		return wheelReverse, wheelReverse, nil
	case Brake:
		return wheelBrake, wheelBrake, nil
	case TurnRight:
		return wheelBrake, wheelForward, nil
	case TurnLeft:
		return wheelForward, wheelBrake, nil
	default:
		return wheelState{}, wheelState{}, fmt.Errorf("unknown direction: %d", int(d))
	}
}

// HBridge drives two DC motors through a dual H-bridge.
// The bridge output always reflects the most recent command; there is no queuing.
type HBridge struct {
	gpio    gpio.Driver
	cfg     Config
	current Direction
	applied bool // false until a Drive fully succeeded
}

// NewHBridge configures the four control pins as outputs.
// The bridge starts in an unknown state; the first Drive writes every line.
func NewHBridge(g gpio.Driver, cfg Config) *HBridge {
	for _, pin := range []int{cfg.Right.In1Pin, cfg.Right.In2Pin, cfg.Left.In1Pin, cfg.Left.In2Pin} {
		_ = g.SetupPin(pin, gpio.Output)
	}
	if cfg.PWMFreqHz <= 0 {
		cfg.PWMFreqHz = 1000
	}
	return &HBridge{
		gpio: g,
		cfg:  cfg,
	}
}

// Drive sets both channels to realize d. Repeating the active direction
// performs no pin writes.
func (h *HBridge) Drive(d Direction) error {
	if h.applied && h.current == d {
		return nil
	}

	right, left, err := levels(d)
	if err != nil {
		return err
	}

	debug.Trace("HBridge: %s -> %s", h.current, d)

	// A partial write leaves the bridge in an unknown state.
	h.applied = false
	writes := []struct {
		pin   int
		level gpio.Level
	}{
		{h.cfg.Right.In1Pin, right.in1},
		{h.cfg.Right.In2Pin, right.in2},
		{h.cfg.Left.In1Pin, left.in1},
		{h.cfg.Left.In2Pin, left.in2},
	}
	for _, w := range writes {
		if err := h.gpio.WritePin(w.pin, w.level); err != nil {
			return fmt.Errorf("drive %s: pin %d: %w", d, w.pin, err)
		}
	}

	h.current = d
	h.applied = true
	return nil
}

// Direction returns the last fully applied direction and whether one exists.
func (h *HBridge) Direction() (Direction, bool) {
	return h.current, h.applied
}

// SetSpeed sets the PWM duty (0-255) on both enable pins.
// It is a no-op when no PWM pin is configured or the GPIO driver has no PWM support.
func (h *HBridge) SetSpeed(duty uint8) error {
	pwm, ok := h.gpio.(gpio.PWM)
	if !ok {
		debug.Verbose("HBridge: GPIO driver has no PWM support, speed %d ignored", duty)
		return nil
	}
	for _, pin := range []int{h.cfg.Right.PWMPin, h.cfg.Left.PWMPin} {
		if pin <= 0 {
			continue
		}
		if err := pwm.SetDutyCycle(pin, h.cfg.PWMFreqHz, uint32(duty), 255); err != nil {
			return fmt.Errorf("set speed on pin %d: %w", pin, err)
		}
	}
	debug.Verbose("HBridge: speed set to %d/255", duty)
	return nil
}
