package motion

import (
	"fmt"
	"time"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/clock"
	"github.com/cjeanneret/BeaconGo/internal/hw/motor"
	"github.com/cjeanneret/BeaconGo/internal/logic/odometry"
)

// Turn describes how far a pivot runs: a fixed angle, or until the caller
// issues another command.
type Turn struct {
	continuous bool
	degrees    float64
}

// ByAngle is a closed-loop pivot of degrees. ByAngle(0) completes at once.
func ByAngle(degrees float64) Turn {
	return Turn{degrees: degrees}
}

// Continuous starts a pivot and returns immediately, leaving the motors turning.
func Continuous() Turn {
	return Turn{continuous: true}
}

// IsContinuous reports whether t has no angle limit.
func (t Turn) IsContinuous() bool {
	return t.continuous
}

// Degrees returns the requested angle; 0 for continuous turns.
func (t Turn) Degrees() float64 {
	return t.degrees
}

func (t Turn) String() string {
	if t.continuous {
		return "continuous"
	}
	return fmt.Sprintf("%g°", t.degrees)
}

// Controller provides the robot's motion primitives: timed drives and
// encoder-counted pivots. It sits between navigation logic and the H-bridge.
type Controller struct {
	bridge *motor.HBridge
	left   odometry.LevelReader
	right  odometry.LevelReader
	clock  clock.Clock
	ratio  odometry.Ratio
}

func NewController(bridge *motor.HBridge, left, right odometry.LevelReader, c clock.Clock, ticksPerDegree float64) *Controller {
	return &Controller{
		bridge: bridge,
		left:   left,
		right:  right,
		clock:  c,
		ratio:  odometry.Ratio(ticksPerDegree),
	}
}

// Ratio returns the configured ticks per degree.
func (c *Controller) Ratio() odometry.Ratio {
	return c.ratio
}

// Drive applies dir and then blocks for hold. A zero hold returns right after
// the bridge is set.
func (c *Controller) Drive(dir motor.Direction, hold time.Duration) error {
	debug.Drive(dir.String(), hold)
	if err := c.bridge.Drive(dir); err != nil {
		return err
	}
	c.clock.Sleep(hold)
	return nil
}

// Stop brakes both wheels.
func (c *Controller) Stop() error {
	return c.bridge.Drive(motor.Brake)
}

// Turn pivots in dir (TurnLeft or TurnRight). A ByAngle turn counts ticks on
// the moving wheel's encoder until the target is reached, then brakes.
// A Continuous turn returns 0 with the motors still pivoting.
func (c *Controller) Turn(dir motor.Direction, t Turn) (int, error) {
	var enc odometry.LevelReader
	switch dir {
	case motor.TurnRight:
		enc = c.left
	case motor.TurnLeft:
		enc = c.right
	default:
		return 0, fmt.Errorf("turn: %s is not a pivot direction", dir)
	}

	if err := c.bridge.Drive(dir); err != nil {
		return 0, err
	}
	if t.continuous {
		return 0, nil
	}

	target := c.ratio.TargetTicks(t.degrees)
	ticks, err := odometry.CountUntil(enc, func(n int) bool { return n >= target })
	if err != nil {
		_ = c.Stop()
		return ticks, fmt.Errorf("turn %s %s: %w", dir, t, err)
	}
	debug.Turn(dir.String(), target, ticks)

	if err := c.Stop(); err != nil {
		return ticks, err
	}
	return ticks, nil
}
