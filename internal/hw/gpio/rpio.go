package gpio

import (
	"fmt"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/stianeikeland/go-rpio/v4"
)

// RPiDriver is the real implementation for Raspberry Pi using go-rpio.
type RPiDriver struct {
	pins map[int]rpio.Pin
}

// NewRPiRealDriver creates a real GPIO driver for Raspberry Pi.
// Requires running on a Raspberry Pi with access to /dev/gpiomem or as root.
func NewRPiRealDriver() (*RPiDriver, error) {
	debug.Info("Initializing real GPIO driver (go-rpio)")

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO: %w (are you running on a Raspberry Pi?)", err)
	}

	debug.Verbose("GPIO memory mapped successfully")

	return &RPiDriver{
		pins: make(map[int]rpio.Pin),
	}, nil
}

func (r *RPiDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)

	if pin < 0 || pin > 27 {
		return fmt.Errorf("pin %d is not a header BCM pin", pin)
	}
	p := rpio.Pin(pin)
	r.pins[pin] = p

	switch mode {
	case Input:
		p.Input()
		p.PullOff()
	case InputPullUp:
		p.Input()
		p.PullUp()
	case InputPullDown:
		p.Input()
		p.PullDown()
	case Output:
		p.Output()
	default:
		return fmt.Errorf("unknown pin mode: %d", mode)
	}

	return nil
}

func (r *RPiDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)

	p, ok := r.pins[pin]
	if !ok {
		// Pin not setup yet, setup as output
		if err := r.SetupPin(pin, Output); err != nil {
			return err
		}
		p = r.pins[pin]
	}

	if level == High {
		p.High()
	} else {
		p.Low()
	}

	return nil
}

func (r *RPiDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)

	p, ok := r.pins[pin]
	if !ok {
		// Pin not setup yet, setup as input
		if err := r.SetupPin(pin, Input); err != nil {
			return Low, err
		}
		p = r.pins[pin]
	}

	if p.Read() == rpio.High {
		return High, nil
	}
	return Low, nil
}

// SetDutyCycle switches pin to hardware PWM mode and sets its duty cycle.
// Only BCM 12, 13, 18 and 19 carry a hardware PWM channel.
func (r *RPiDriver) SetDutyCycle(pin int, freqHz int, duty, cycle uint32) error {
	debug.GPIO("SetDutyCycle", pin, debug.Fmt("%d/%d @ %dHz", duty, cycle, freqHz))

	switch pin {
	case 12, 13, 18, 19:
	default:
		return fmt.Errorf("pin %d has no hardware PWM channel", pin)
	}
	if cycle == 0 || duty > cycle {
		return fmt.Errorf("invalid duty cycle %d/%d", duty, cycle)
	}

	p := rpio.Pin(pin)
	r.pins[pin] = p
	p.Mode(rpio.Pwm)
	// PWM clock = output frequency * cycle length.
	p.Freq(freqHz * int(cycle))
	p.DutyCycle(duty, cycle)
	return nil
}

func (r *RPiDriver) Close() error {
	debug.Trace("GPIO Close (real driver)")

	// Outputs go LOW first so the H-bridge coasts, then every pin becomes an input.
	for pin, p := range r.pins {
		debug.Verbose("Releasing pin %d", pin)
		p.Low()
		p.Input()
	}

	return rpio.Close()
}
