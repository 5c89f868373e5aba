package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cjeanneret/BeaconGo/internal/hw/motor"
	"github.com/cjeanneret/BeaconGo/internal/hw/sensor"
	"github.com/cjeanneret/BeaconGo/internal/logic/avoid"
	"github.com/cjeanneret/BeaconGo/internal/logic/seek"
)

type fakeSeeker struct {
	results []seek.Result
	calls   int
	err     error
}

func (s *fakeSeeker) Seek() (seek.Result, error) {
	s.calls++
	if s.err != nil {
		return seek.Lost, s.err
	}
	if len(s.results) == 0 {
		return seek.Centered, nil
	}
	r := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return r, nil
}

func (s *fakeSeeker) LastTicks() int { return 10 }

type fakeProximity struct {
	reading sensor.ProximityReading
}

func (p *fakeProximity) Read() (sensor.ProximityReading, error) { return p.reading, nil }

type fakeAvoider struct {
	outcome  avoid.Outcome
	readings []sensor.ProximityReading
}

func (a *fakeAvoider) Avoid(r sensor.ProximityReading) (avoid.Outcome, error) {
	a.readings = append(a.readings, r)
	return a.outcome, nil
}

type fakeDriver struct {
	drives []motor.Direction
	holds  []time.Duration
	stops  int
}

func (d *fakeDriver) Drive(dir motor.Direction, hold time.Duration) error {
	d.drives = append(d.drives, dir)
	d.holds = append(d.holds, hold)
	return nil
}

func (d *fakeDriver) Stop() error {
	d.stops++
	return nil
}

type fakeFlasher struct {
	flashes []time.Duration
}

func (f *fakeFlasher) Flash(total time.Duration) error {
	f.flashes = append(f.flashes, total)
	return nil
}

var testParams = Params{
	ObstacleThreshold: 300,
	ForwardPulse:      50 * time.Millisecond,
	TerminalFlash:     3 * time.Second,
}

type fixture struct {
	seeker  *fakeSeeker
	prox    *fakeProximity
	avoider *fakeAvoider
	driver  *fakeDriver
	flasher *fakeFlasher
	nav     *Navigator
}

func newFixture(reading sensor.ProximityReading) *fixture {
	f := &fixture{
		seeker:  &fakeSeeker{},
		prox:    &fakeProximity{reading: reading},
		avoider: &fakeAvoider{},
		driver:  &fakeDriver{},
		flasher: &fakeFlasher{},
	}
	f.nav = NewNavigator(f.seeker, f.prox, f.avoider, f.driver, f.flasher, testParams)
	return f
}

func TestStep_ClearPathPulsesForward(t *testing.T) {
	// Scenario: left=50, right=60, threshold=300
	f := newFixture(sensor.ProximityReading{Left: 50, Right: 60})

	state, err := f.nav.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if state != Navigating {
		t.Errorf("state = %v, want navigating", state)
	}
	if len(f.avoider.readings) != 0 {
		t.Error("avoidance must not run below threshold")
	}
	if len(f.driver.drives) != 1 || f.driver.drives[0] != motor.Forward || f.driver.holds[0] != 50*time.Millisecond {
		t.Errorf("drives = %v %v, want one forward 50ms pulse", f.driver.drives, f.driver.holds)
	}
}

func TestStep_BelowThresholdNeverAvoids(t *testing.T) {
	for _, r := range []sensor.ProximityReading{{Left: 0, Right: 0}, {Left: 299, Right: 0}, {Left: 0, Right: 299}, {Left: 299, Right: 299}, {Left: 150, Right: 42}} {
		f := newFixture(r)
		for i := 0; i < 5; i++ {
			if _, err := f.nav.Step(); err != nil {
				t.Fatal(err)
			}
		}
		if len(f.avoider.readings) != 0 {
			t.Errorf("reading %+v triggered avoidance", r)
		}
		if f.nav.Stats().ForwardPulses != 5 {
			t.Errorf("reading %+v: %d forward pulses, want 5", r, f.nav.Stats().ForwardPulses)
		}
	}
}

func TestStep_AtOrAboveThresholdAvoids(t *testing.T) {
	for _, r := range []sensor.ProximityReading{{Left: 300, Right: 0}, {Left: 0, Right: 300}, {Left: 320, Right: 40}, {Left: 1023, Right: 1023}} {
		f := newFixture(r)
		if _, err := f.nav.Step(); err != nil {
			t.Fatal(err)
		}
		if len(f.avoider.readings) != 1 || f.avoider.readings[0] != r {
			t.Errorf("reading %+v: avoider got %v", r, f.avoider.readings)
		}
		if len(f.driver.drives) != 0 {
			t.Errorf("reading %+v: unexpected forward pulse", r)
		}
	}
}

func TestStep_GoalReached(t *testing.T) {
	f := newFixture(sensor.ProximityReading{Left: 320, Right: 40})
	f.avoider.outcome = avoid.GoalReached

	state, err := f.nav.Step()
	if err != nil {
		t.Fatal(err)
	}
	if state != GoalReached {
		t.Fatalf("state = %v, want goal-reached", state)
	}
	if f.driver.stops != 1 {
		t.Errorf("stops = %d, want 1", f.driver.stops)
	}
	if len(f.flasher.flashes) != 1 || f.flasher.flashes[0] != 3*time.Second {
		t.Errorf("flashes = %v, want [3s]", f.flasher.flashes)
	}
}

func TestStep_BeaconLost(t *testing.T) {
	f := newFixture(sensor.ProximityReading{})
	f.seeker.results = []seek.Result{seek.Lost}

	state, err := f.nav.Step()
	if err != nil {
		t.Fatal(err)
	}
	if state != BeaconLost {
		t.Fatalf("state = %v, want beacon-lost", state)
	}
	if len(f.driver.drives) != 0 {
		t.Error("no drive expected after losing the beacon")
	}
	if len(f.flasher.flashes) != 1 {
		t.Errorf("flashes = %v, want one terminal flash", f.flasher.flashes)
	}
}

func TestStep_TerminalIsSticky(t *testing.T) {
	f := newFixture(sensor.ProximityReading{})
	f.seeker.results = []seek.Result{seek.Lost, seek.Centered}
	if _, err := f.nav.Step(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		state, err := f.nav.Step()
		if err != nil || state != BeaconLost {
			t.Fatalf("Step = %v,%v, want beacon-lost", state, err)
		}
	}
	if f.seeker.calls != 1 {
		t.Errorf("seeker called %d times, want 1", f.seeker.calls)
	}
	if f.nav.Stats().Cycles != 1 {
		t.Errorf("cycles = %d, want 1", f.nav.Stats().Cycles)
	}
}

func TestStep_ContinueAfterAvoidance(t *testing.T) {
	f := newFixture(sensor.ProximityReading{Left: 320, Right: 40})

	state, err := f.nav.Step()
	if err != nil || state != Navigating {
		t.Fatalf("Step = %v,%v, want navigating", state, err)
	}
	f.prox.reading = sensor.ProximityReading{Left: 10, Right: 10}
	if _, err := f.nav.Step(); err != nil {
		t.Fatal(err)
	}
	st := f.nav.Stats()
	if st.Avoidances != 1 || st.ForwardPulses != 1 || st.Cycles != 2 || st.SeekTicks != 20 {
		t.Errorf("stats = %+v", st)
	}
}

func TestStep_SeekError(t *testing.T) {
	f := newFixture(sensor.ProximityReading{})
	f.seeker.err = errors.New("bus")
	if _, err := f.nav.Step(); err == nil {
		t.Error("expected error")
	}
	if f.nav.State() != Navigating {
		t.Errorf("state = %v, errors must not change state", f.nav.State())
	}
}

func TestRun_StopsAtTerminalState(t *testing.T) {
	f := newFixture(sensor.ProximityReading{})
	f.seeker.results = []seek.Result{seek.Centered, seek.Centered, seek.Centered, seek.Lost}

	state, err := f.nav.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state != BeaconLost {
		t.Errorf("state = %v, want beacon-lost", state)
	}
	if f.nav.Stats().ForwardPulses != 3 {
		t.Errorf("forward pulses = %d, want 3", f.nav.Stats().ForwardPulses)
	}
}

func TestRun_CancelledBetweenCycles(t *testing.T) {
	f := newFixture(sensor.ProximityReading{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := f.nav.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if state != Navigating {
		t.Errorf("state = %v, want navigating", state)
	}
	if f.seeker.calls != 0 {
		t.Error("no cycle should start after cancellation")
	}
	if f.driver.stops != 1 {
		t.Errorf("stops = %d, want motors braked on cancel", f.driver.stops)
	}
}

func TestRun_ErrorBrakes(t *testing.T) {
	f := newFixture(sensor.ProximityReading{})
	f.seeker.err = errors.New("bus")

	if _, err := f.nav.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if f.driver.stops != 1 {
		t.Errorf("stops = %d, want 1", f.driver.stops)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{Navigating: "navigating", BeaconLost: "beacon-lost", GoalReached: "goal-reached"}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
	if Navigating.Terminal() || !BeaconLost.Terminal() || !GoalReached.Terminal() {
		t.Error("Terminal() mismatch")
	}
}
