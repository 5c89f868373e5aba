package adc

import (
	"fmt"

	"github.com/cjeanneret/BeaconGo/internal/debug"
)

// MaxValue is the full-scale reading of a 10-bit converter.
const MaxValue = 1023

// Reader performs a single blocking analog conversion.
type Reader interface {
	ReadChannel(channel int) (uint16, error)
	Close() error
}

// MockReader returns fixed values per channel. Unset channels read 0.
type MockReader struct {
	Values map[int]uint16
}

// NewReader creates an ADC reader based on the chosen mode.
// If mock is true, returns a MockReader reading 0 everywhere.
func NewReader(mock bool, cfg SPIConfig) (Reader, error) {
	if mock {
		debug.Info("Using MOCK ADC (development mode)")
		return &MockReader{}, nil
	}
	return OpenMCP3008(cfg)
}

func (m *MockReader) ReadChannel(channel int) (uint16, error) {
	if err := checkChannel(channel); err != nil {
		return 0, err
	}
	v := m.Values[channel]
	debug.ADC(channel, v)
	return v, nil
}

func (m *MockReader) Close() error {
	debug.Trace("ADC Close (mock)")
	return nil
}

func checkChannel(channel int) error {
	if channel < 0 || channel > 7 {
		return fmt.Errorf("adc channel must be 0-7, got %d", channel)
	}
	return nil
}
