package adc

import (
	"fmt"

	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/stianeikeland/go-rpio/v4"
)

// SPIConfig selects the SPI0 chip select and bus speed of the converter.
type SPIConfig struct {
	ChipSelect uint8
	SpeedHz    int
}

// MCP3008 reads a Microchip MCP3008 8-channel 10-bit ADC on SPI0.
// go-rpio must already be open (see gpio.NewRPiRealDriver).
type MCP3008 struct {
	cs uint8
}

// OpenMCP3008 claims SPI0 for the converter.
func OpenMCP3008(cfg SPIConfig) (*MCP3008, error) {
	debug.Info("Initializing MCP3008 on SPI0 CE%d", cfg.ChipSelect)

	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		return nil, fmt.Errorf("begin SPI0: %w", err)
	}
	speed := cfg.SpeedHz
	if speed <= 0 {
		speed = 1000000
	}
	rpio.SpiSpeed(speed)
	rpio.SpiChipSelect(cfg.ChipSelect)
	rpio.SpiMode(0, 0)

	return &MCP3008{cs: cfg.ChipSelect}, nil
}

// ReadChannel performs a single-ended conversion on channel 0-7.
func (m *MCP3008) ReadChannel(channel int) (uint16, error) {
	if err := checkChannel(channel); err != nil {
		return 0, err
	}
	rpio.SpiChipSelect(m.cs)
	buf := mcp3008Request(channel)
	rpio.SpiExchange(buf)
	v := mcp3008Decode(buf)
	debug.ADC(channel, v)
	return v, nil
}

func (m *MCP3008) Close() error {
	debug.Trace("ADC Close (MCP3008)")
	rpio.SpiEnd(rpio.Spi0)
	return nil
}

// mcp3008Request builds the 3-byte frame: start bit, single-ended mode + channel, padding.
func mcp3008Request(channel int) []byte {
	return []byte{0x01, byte(0x08|channel) << 4, 0x00}
}

// mcp3008Decode extracts the 10-bit result from the response frame.
func mcp3008Decode(buf []byte) uint16 {
	return uint16(buf[1]&0x03)<<8 | uint16(buf[2])
}
