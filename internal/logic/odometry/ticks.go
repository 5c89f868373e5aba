package odometry

import (
	"fmt"
	"math"
)

// LevelReader samples the current logic level of an encoder line.
type LevelReader interface {
	Level() (bool, error)
}

// Ratio converts rotation angles to encoder ticks (ticks per degree).
type Ratio float64

// FullRotation is the seek budget angle.
const FullRotation = 360.0

// Budget returns angle*r with float noise below 1e-6 removed.
func (r Ratio) Budget(angleDegrees float64) float64 {
	return math.Round(angleDegrees*float64(r)*1e6) / 1e6
}

// TargetTicks returns the smallest tick count >= angle*r.
// A turn by angle is complete once ticks >= TargetTicks(angle).
func (r Ratio) TargetTicks(angleDegrees float64) int {
	if angleDegrees <= 0 {
		return 0
	}
	return int(math.Ceil(r.Budget(angleDegrees)))
}

// Counter counts level transitions on one encoder line.
// Every change between two consecutive samples is one tick.
type Counter struct {
	enc   LevelReader
	last  bool
	ticks int
}

// NewCounter takes the reference sample. The count starts at zero.
func NewCounter(enc LevelReader) (*Counter, error) {
	level, err := enc.Level()
	if err != nil {
		return nil, fmt.Errorf("sample encoder: %w", err)
	}
	return &Counter{enc: enc, last: level}, nil
}

// Sample reads the encoder once and returns the accumulated count.
func (c *Counter) Sample() (int, error) {
	level, err := c.enc.Level()
	if err != nil {
		return c.ticks, fmt.Errorf("sample encoder: %w", err)
	}
	if level != c.last {
		c.ticks++
	}
	c.last = level
	return c.ticks, nil
}

// Ticks returns the accumulated count without sampling.
func (c *Counter) Ticks() int {
	return c.ticks
}

// CountUntil samples enc until done reports true for the accumulated count.
// done is checked before every sample, so a target of zero ticks needs no sample.
func CountUntil(enc LevelReader, done func(ticks int) bool) (int, error) {
	c, err := NewCounter(enc)
	if err != nil {
		return 0, err
	}
	for !done(c.Ticks()) {
		if _, err := c.Sample(); err != nil {
			return c.Ticks(), err
		}
	}
	return c.Ticks(), nil
}
