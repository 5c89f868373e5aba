package avoid

import (
	"fmt"
	"time"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/motor"
	"github.com/cjeanneret/BeaconGo/internal/hw/sensor"
	"github.com/cjeanneret/BeaconGo/internal/logic/motion"
)

// Outcome is the result of an avoidance maneuver.
type Outcome int

const (
	Continue Outcome = iota
	GoalReached
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case GoalReached:
		return "goal-reached"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Side selects which way the first pivot of the escape goes.
type Side string

const (
	EvadeLeft  Side = "left"
	EvadeRight Side = "right"
	EvadeAway  Side = "away" // pivot away from the side with the higher reading
)

// Mover executes drive and pivot commands.
type Mover interface {
	Drive(dir motor.Direction, hold time.Duration) error
	Stop() error
	Turn(dir motor.Direction, t motion.Turn) (int, error)
}

// BeaconReader samples the beacon sensors.
type BeaconReader interface {
	Read() (sensor.BeaconState, error)
}

// Flasher signals an event on the indicator LEDs.
type Flasher interface {
	Flash(total time.Duration) error
}

// Plan holds the fixed timings and angles of the escape.
type Plan struct {
	Flash        time.Duration // obstacle indicator pattern
	Pause        time.Duration // braked pause after the flash
	Reverse      time.Duration
	PivotDeg     float64
	Forward      time.Duration
	PivotBackDeg float64
	Evade        Side
}

// Maneuver is the fixed stop, reverse, pivot, advance, pivot-back escape.
// It does not react to sensors once the escape has started.
type Maneuver struct {
	mover     Mover
	beacon    BeaconReader
	indicator Flasher
	plan      Plan
}

func NewManeuver(m Mover, b BeaconReader, f Flasher, plan Plan) *Maneuver {
	if plan.Evade == "" {
		plan.Evade = EvadeLeft
	}
	return &Maneuver{
		mover:     m,
		beacon:    b,
		indicator: f,
		plan:      plan,
	}
}

// Avoid brakes, then checks whether the beacon is centered: if so the goal is
// reached and the motors stay braked. Otherwise it runs the escape and returns
// Continue.
func (m *Maneuver) Avoid(reading sensor.ProximityReading) (Outcome, error) {
	debug.Step(1, "Avoid: brake")
	if err := m.mover.Stop(); err != nil {
		return Continue, fmt.Errorf("avoid: brake: %w", err)
	}

	state, err := m.beacon.Read()
	if err != nil {
		return Continue, fmt.Errorf("avoid: read beacon: %w", err)
	}
	if state.Centered() {
		debug.Live("Avoid: beacon centered at obstacle, goal reached")
		return GoalReached, nil
	}

	debug.Step(2, "Avoid: obstacle signal")
	if err := m.indicator.Flash(m.plan.Flash); err != nil {
		return Continue, fmt.Errorf("avoid: flash: %w", err)
	}
	if err := m.mover.Drive(motor.Brake, m.plan.Pause); err != nil {
		return Continue, fmt.Errorf("avoid: pause: %w", err)
	}

	first, back := m.pivots(reading)

	debug.Step(3, "Avoid: reverse")
	if err := m.mover.Drive(motor.Reverse, m.plan.Reverse); err != nil {
		return Continue, fmt.Errorf("avoid: reverse: %w", err)
	}

	debug.Step(4, "Avoid: pivot")
	if _, err := m.mover.Turn(first, motion.ByAngle(m.plan.PivotDeg)); err != nil {
		return Continue, fmt.Errorf("avoid: pivot: %w", err)
	}

	debug.Step(5, "Avoid: advance")
	if err := m.mover.Drive(motor.Forward, m.plan.Forward); err != nil {
		return Continue, fmt.Errorf("avoid: advance: %w", err)
	}

	debug.Step(6, "Avoid: pivot back")
	if _, err := m.mover.Turn(back, motion.ByAngle(m.plan.PivotBackDeg)); err != nil {
		return Continue, fmt.Errorf("avoid: pivot back: %w", err)
	}

	return Continue, nil
}

// pivots returns the escape pivot and the return pivot for reading.
func (m *Maneuver) pivots(reading sensor.ProximityReading) (first, back motor.Direction) {
	evadeLeft := true
	switch m.plan.Evade {
	case EvadeRight:
		evadeLeft = false
	case EvadeAway:
		// Obstacle on the left: escape to the right. Ties keep the left escape.
		evadeLeft = reading.Left <= reading.Right
	}
	if evadeLeft {
		return motor.TurnLeft, motor.TurnRight
	}
	return motor.TurnRight, motor.TurnLeft
}
