package indicator

import (
	"errors"
	"testing"
	"time"

	"github.com/cjeanneret/BeaconGo/internal/hw/clock"
	"github.com/cjeanneret/BeaconGo/internal/hw/gpio"
)

// recordingDriver records GPIO calls for verification.
type recordingDriver struct {
	calls    []gpioCall
	writeErr error
}

type gpioCall struct {
	op    string
	pin   int
	level gpio.Level
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.calls = append(d.calls, gpioCall{op: "setup", pin: pin})
	return nil
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	d.calls = append(d.calls, gpioCall{op: "write", pin: pin, level: level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) {
	return gpio.Low, nil
}

func (d *recordingDriver) Close() error { return nil }

func (d *recordingDriver) writeCalls() []gpioCall {
	var result []gpioCall
	for _, c := range d.calls {
		if c.op == "write" {
			result = append(result, c)
		}
	}
	return result
}

func TestNewBank_PinsInitializedLow(t *testing.T) {
	drv := &recordingDriver{}
	if _, err := NewBank(drv, &clock.Fake{}, []int{22, 23, 24, 25}); err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	writes := drv.writeCalls()
	if len(writes) != 4 {
		t.Fatalf("expected 4 writes, got %d", len(writes))
	}
	for _, w := range writes {
		if w.level != gpio.Low {
			t.Errorf("pin %d initialized %v, want LOW", w.pin, w.level)
		}
	}
}

func TestNewBank_TooManyPins(t *testing.T) {
	if _, err := NewBank(&recordingDriver{}, &clock.Fake{}, []int{1, 2, 3, 4, 5}); err == nil {
		t.Error("expected error for 5 indicator pins")
	}
}

func TestBank_Set(t *testing.T) {
	drv := &recordingDriver{}
	b, _ := NewBank(drv, &clock.Fake{}, []int{22, 23})
	drv.calls = nil

	if err := b.Set(true); err != nil {
		t.Fatal(err)
	}
	for _, w := range drv.writeCalls() {
		if w.level != gpio.High {
			t.Errorf("pin %d = %v, want HIGH", w.pin, w.level)
		}
	}
}

func TestBank_FlashPattern(t *testing.T) {
	drv := &recordingDriver{}
	clk := &clock.Fake{}
	b, _ := NewBank(drv, clk, []int{22, 23, 24, 25})
	drv.calls = nil

	if err := b.Flash(3 * time.Second); err != nil {
		t.Fatalf("Flash: %v", err)
	}

	// 3 flashes x (4 on + 4 off)
	writes := drv.writeCalls()
	if len(writes) != 24 {
		t.Fatalf("expected 24 writes, got %d", len(writes))
	}
	for i, w := range writes {
		want := gpio.Level((i/4)%2 == 0)
		if w.level != want {
			t.Errorf("write %d on pin %d = %v, want %v", i, w.pin, w.level, want)
		}
	}

	sleeps := clk.Sleeps()
	if len(sleeps) != 6 {
		t.Fatalf("expected 6 delays, got %d", len(sleeps))
	}
	for i, d := range sleeps {
		if d != 500*time.Millisecond {
			t.Errorf("delay %d = %v, want 500ms", i, d)
		}
	}
	if clk.Elapsed() != 3*time.Second {
		t.Errorf("Flash took %v, want 3s", clk.Elapsed())
	}
}

func TestBank_FlashWriteError(t *testing.T) {
	drv := &recordingDriver{}
	clk := &clock.Fake{}
	b, _ := NewBank(drv, clk, []int{22})
	drv.writeErr = errors.New("boom")

	if err := b.Flash(time.Second); err == nil {
		t.Error("expected write error")
	}
	if len(clk.Sleeps()) != 0 {
		t.Error("no delay expected after a failed write")
	}
}
