// Package clock isolates the blocking delay primitive so control logic can
// run against a zero-cost fake in tests.
package clock

import "time"

// Clock blocks the caller for a fixed wall-clock duration.
// There is no cancellation: once Sleep is entered it runs to completion.
type Clock interface {
	Sleep(d time.Duration)
}

// Real is the wall-clock implementation.
type Real struct{}

func (Real) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Fake records requested delays without blocking.
type Fake struct {
	sleeps []time.Duration
}

func (f *Fake) Sleep(d time.Duration) {
	f.sleeps = append(f.sleeps, d)
}

// Sleeps returns every duration passed to Sleep, in call order.
func (f *Fake) Sleeps() []time.Duration {
	return f.sleeps
}

// Elapsed returns the sum of all recorded delays.
func (f *Fake) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range f.sleeps {
		total += d
	}
	return total
}

// Reset forgets recorded delays.
func (f *Fake) Reset() {
	f.sleeps = nil
}
