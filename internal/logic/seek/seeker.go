package seek

import (
	"fmt"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/motor"
	"github.com/cjeanneret/BeaconGo/internal/hw/sensor"
	"github.com/cjeanneret/BeaconGo/internal/logic/motion"
	"github.com/cjeanneret/BeaconGo/internal/logic/odometry"
)

// Result is the outcome of a beacon search.
type Result int

const (
	Centered Result = iota
	Lost
)

func (r Result) String() string {
	switch r {
	case Centered:
		return "centered"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// BeaconReader samples the beacon sensors.
type BeaconReader interface {
	Read() (sensor.BeaconState, error)
}

// Rotator pivots the robot in place.
type Rotator interface {
	Turn(dir motor.Direction, t motion.Turn) (int, error)
	Stop() error
}

// Seeker rotates the robot until the beacon sits between both sensors.
type Seeker struct {
	beacon  BeaconReader
	rotator Rotator
	encoder odometry.LevelReader
	budget  float64
	ticks   int
}

// NewSeeker builds a seeker that gives up after one full rotation, measured
// in ticks on encoder.
func NewSeeker(b BeaconReader, r Rotator, encoder odometry.LevelReader, ratio odometry.Ratio) *Seeker {
	return &Seeker{
		beacon:  b,
		rotator: r,
		encoder: encoder,
		budget:  ratio.Budget(odometry.FullRotation),
	}
}

// Budget returns the tick count a search may reach without failing.
func (s *Seeker) Budget() float64 {
	return s.budget
}

// LastTicks returns the ticks accumulated by the most recent Seek.
func (s *Seeker) LastTicks() int {
	return s.ticks
}

// Seek turns toward the beacon until both sensors see it (Centered) or the
// accumulated ticks exceed the full-rotation budget (Lost, motors braked).
// An already centered beacon costs one sensor read and no motor command.
// On Centered the motors are left in the last pivot; the next command replaces it.
//
// Ticks are always counted on the encoder given to NewSeeker (the left wheel
// in cmd/beacongo), whichever way the robot pivots. A left pivot brakes that
// wheel, so while the beacon is seen only on the left the budget does not run
// down. This is the firmware's search behaviour and is kept as is.
func (s *Seeker) Seek() (Result, error) {
	s.ticks = 0

	state, err := s.beacon.Read()
	if err != nil {
		return Lost, fmt.Errorf("seek: %w", err)
	}
	if state.Centered() {
		return Centered, nil
	}

	counter, err := odometry.NewCounter(s.encoder)
	if err != nil {
		return Lost, fmt.Errorf("seek: %w", err)
	}

	for {
		dir := motor.TurnRight
		if state.LeftSeen {
			dir = motor.TurnLeft
		}
		if _, err := s.rotator.Turn(dir, motion.Continuous()); err != nil {
			return Lost, fmt.Errorf("seek: %w", err)
		}

		ticks, err := counter.Sample()
		s.ticks = ticks
		if err != nil {
			return Lost, fmt.Errorf("seek: %w", err)
		}
		if float64(ticks) > s.budget {
			debug.Live("Seek: beacon not found after %d ticks (budget %.1f)", ticks, s.budget)
			if err := s.rotator.Stop(); err != nil {
				return Lost, fmt.Errorf("seek: %w", err)
			}
			return Lost, nil
		}

		state, err = s.beacon.Read()
		if err != nil {
			return Lost, fmt.Errorf("seek: %w", err)
		}
		if state.Centered() {
			debug.Live("Seek: beacon centered after %d ticks", ticks)
			return Centered, nil
		}
	}
}
