package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/motor"
	"github.com/cjeanneret/BeaconGo/internal/hw/sensor"
	"github.com/cjeanneret/BeaconGo/internal/logic/avoid"
	"github.com/cjeanneret/BeaconGo/internal/logic/seek"
)

// State is the navigator's lifecycle state.
type State int

const (
	Navigating State = iota
	BeaconLost
	GoalReached
)

func (s State) String() string {
	switch s {
	case Navigating:
		return "navigating"
	case BeaconLost:
		return "beacon-lost"
	case GoalReached:
		return "goal-reached"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether s halts the control loop for good.
func (s State) Terminal() bool {
	return s == BeaconLost || s == GoalReached
}

// Seeker faces the robot toward the beacon.
type Seeker interface {
	Seek() (seek.Result, error)
	LastTicks() int
}

// ProximityReader samples both proximity sensors.
type ProximityReader interface {
	Read() (sensor.ProximityReading, error)
}

// Avoider runs the obstacle escape.
type Avoider interface {
	Avoid(reading sensor.ProximityReading) (avoid.Outcome, error)
}

// Driver issues timed drive commands.
type Driver interface {
	Drive(dir motor.Direction, hold time.Duration) error
	Stop() error
}

// Flasher signals on the indicator LEDs.
type Flasher interface {
	Flash(total time.Duration) error
}

// Params holds the loop's thresholds and timings.
type Params struct {
	ObstacleThreshold uint16
	ForwardPulse      time.Duration
	TerminalFlash     time.Duration
}

// Stats summarizes a run.
type Stats struct {
	Cycles        int
	ForwardPulses int
	Avoidances    int
	SeekTicks     int // total ticks spent searching
}

// Navigator sequences the control cycle: face the beacon, check for
// obstacles, then either escape or advance one pulse.
type Navigator struct {
	seeker    Seeker
	proximity ProximityReader
	avoider   Avoider
	driver    Driver
	indicator Flasher
	params    Params

	state State
	stats Stats
}

func NewNavigator(s Seeker, p ProximityReader, a Avoider, d Driver, f Flasher, params Params) *Navigator {
	return &Navigator{
		seeker:    s,
		proximity: p,
		avoider:   a,
		driver:    d,
		indicator: f,
		params:    params,
		state:     Navigating,
	}
}

// State returns the current state.
func (n *Navigator) State() State {
	return n.state
}

// Stats returns counters for the run so far.
func (n *Navigator) Stats() Stats {
	return n.stats
}

// Step runs one control cycle and returns the resulting state.
// Once a terminal state is reached Step does nothing.
func (n *Navigator) Step() (State, error) {
	if n.state.Terminal() {
		return n.state, nil
	}
	n.stats.Cycles++

	res, err := n.seeker.Seek()
	n.stats.SeekTicks += n.seeker.LastTicks()
	if err != nil {
		return n.state, err
	}
	if res == seek.Lost {
		return n.halt(BeaconLost)
	}

	reading, err := n.proximity.Read()
	if err != nil {
		return n.state, err
	}

	if reading.Exceeds(n.params.ObstacleThreshold) {
		debug.Obstacle(reading.Left, reading.Right, n.params.ObstacleThreshold)
		n.stats.Avoidances++
		out, err := n.avoider.Avoid(reading)
		if err != nil {
			return n.state, err
		}
		if out == avoid.GoalReached {
			return n.halt(GoalReached)
		}
		return n.state, nil
	}

	n.stats.ForwardPulses++
	if err := n.driver.Drive(motor.Forward, n.params.ForwardPulse); err != nil {
		return n.state, err
	}
	return n.state, nil
}

// Run steps until a terminal state. ctx is checked between cycles only;
// a cycle in progress always completes. On cancellation the motors are braked.
func (n *Navigator) Run(ctx context.Context) (State, error) {
	for !n.state.Terminal() {
		select {
		case <-ctx.Done():
			_ = n.driver.Stop()
			return n.state, ctx.Err()
		default:
		}

		if _, err := n.Step(); err != nil {
			_ = n.driver.Stop()
			return n.state, fmt.Errorf("cycle %d: %w", n.stats.Cycles, err)
		}
	}
	return n.state, nil
}

// halt brakes permanently and shows the terminal pattern.
func (n *Navigator) halt(s State) (State, error) {
	n.state = s
	debug.Terminal(s.String(), n.stats.Cycles)
	if err := n.driver.Stop(); err != nil {
		return n.state, err
	}
	if err := n.indicator.Flash(n.params.TerminalFlash); err != nil {
		return n.state, err
	}
	return n.state, nil
}
