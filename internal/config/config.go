package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WheelConfig holds the H-bridge pins for one wheel.
type WheelConfig struct {
	In1Pin int `yaml:"in1_pin"`
	In2Pin int `yaml:"in2_pin"`
	PWMPin int `yaml:"pwm_pin"` // hardware PWM pin (BCM 12/13/18/19). 0 = not used.
}

// MotorsConfig describes the dual H-bridge.
type MotorsConfig struct {
	Left      WheelConfig `yaml:"left"`
	Right     WheelConfig `yaml:"right"`
	BaseSpeed int         `yaml:"base_speed"`  // PWM duty 0-255
	PWMFreqHz int         `yaml:"pwm_freq_hz"` // PWM output frequency
}

// BeaconConfig describes the two beacon-direction sensors.
type BeaconConfig struct {
	LeftPin   int   `yaml:"left_pin"`
	RightPin  int   `yaml:"right_pin"`
	ActiveLow *bool `yaml:"active_low,omitempty"` // default true: LOW = beacon detected
}

// EncodersConfig holds the wheel encoder input pins.
type EncodersConfig struct {
	LeftPin  int `yaml:"left_pin"`
	RightPin int `yaml:"right_pin"`
}

// ProximityConfig describes the proximity sensors on the MCP3008 ADC.
type ProximityConfig struct {
	ChipSelect   int `yaml:"chip_select"` // SPI0 CE0 or CE1
	SPISpeedHz   int `yaml:"spi_speed_hz"`
	LeftChannel  int `yaml:"left_channel"`
	RightChannel int `yaml:"right_channel"`
}

// IndicatorsConfig lists the indicator LED pins (up to 4).
type IndicatorsConfig struct {
	Pins []int `yaml:"pins"`
}

// NavigationConfig holds the main loop parameters.
type NavigationConfig struct {
	ObstacleThreshold int     `yaml:"obstacle_threshold"` // 1-1023, a reading >= threshold is an obstacle
	TicksPerDegree    float64 `yaml:"ticks_per_degree"`
	ForwardPulseMs    int     `yaml:"forward_pulse_ms"`
}

// AvoidanceConfig holds the fixed escape maneuver.
type AvoidanceConfig struct {
	PauseMs      int     `yaml:"pause_ms"`
	ReverseMs    int     `yaml:"reverse_ms"`
	PivotDeg     float64 `yaml:"pivot_deg"`
	ForwardMs    int     `yaml:"forward_ms"`
	PivotBackDeg float64 `yaml:"pivot_back_deg"`
	EvadeSide    string  `yaml:"evade_side"` // left, right or away
}

// FlashConfig holds the total duration of each indicator pattern.
type FlashConfig struct {
	StartupMs  int `yaml:"startup_ms"`
	ObstacleMs int `yaml:"obstacle_ms"`
	TerminalMs int `yaml:"terminal_ms"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO and ADC (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Motors     MotorsConfig     `yaml:"motors"`
	Beacon     BeaconConfig     `yaml:"beacon"`
	Encoders   EncodersConfig   `yaml:"encoders"`
	Proximity  ProximityConfig  `yaml:"proximity"`
	Indicators IndicatorsConfig `yaml:"indicators"`
	Navigation NavigationConfig `yaml:"navigation"`
	Avoidance  AvoidanceConfig  `yaml:"avoidance"`
	Flash      FlashConfig      `yaml:"flash"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Motors.BaseSpeed == 0 {
		c.Motors.BaseSpeed = 125
	}
	if c.Motors.PWMFreqHz <= 0 {
		c.Motors.PWMFreqHz = 1000
	}
	if c.Beacon.ActiveLow == nil {
		activeLow := true
		c.Beacon.ActiveLow = &activeLow
	}
	if c.Proximity.SPISpeedHz <= 0 {
		c.Proximity.SPISpeedHz = 1000000 // 1 MHz
	}
	if c.Navigation.ObstacleThreshold == 0 {
		c.Navigation.ObstacleThreshold = 300
	}
	if c.Navigation.TicksPerDegree == 0 {
		c.Navigation.TicksPerDegree = 2.6
	}
	if c.Navigation.ForwardPulseMs <= 0 {
		c.Navigation.ForwardPulseMs = 50
	}
	if c.Avoidance.PauseMs <= 0 {
		c.Avoidance.PauseMs = 100
	}
	if c.Avoidance.ReverseMs <= 0 {
		c.Avoidance.ReverseMs = 1000
	}
	if c.Avoidance.PivotDeg == 0 {
		c.Avoidance.PivotDeg = 60
	}
	if c.Avoidance.ForwardMs <= 0 {
		c.Avoidance.ForwardMs = 1200
	}
	if c.Avoidance.PivotBackDeg == 0 {
		c.Avoidance.PivotBackDeg = 60
	}
	if c.Avoidance.EvadeSide == "" {
		c.Avoidance.EvadeSide = "left"
	}
	if c.Flash.StartupMs <= 0 {
		c.Flash.StartupMs = 3000
	}
	if c.Flash.ObstacleMs <= 0 {
		c.Flash.ObstacleMs = 1000
	}
	if c.Flash.TerminalMs <= 0 {
		c.Flash.TerminalMs = 3000
	}
}

// Validate checks ranges, required pins and that no BCM pin serves two functions.
func (c *Config) Validate() error {
	pins := map[string]int{
		"motors.left.in1_pin":  c.Motors.Left.In1Pin,
		"motors.left.in2_pin":  c.Motors.Left.In2Pin,
		"motors.right.in1_pin": c.Motors.Right.In1Pin,
		"motors.right.in2_pin": c.Motors.Right.In2Pin,
		"beacon.left_pin":      c.Beacon.LeftPin,
		"beacon.right_pin":     c.Beacon.RightPin,
		"encoders.left_pin":    c.Encoders.LeftPin,
		"encoders.right_pin":   c.Encoders.RightPin,
	}
	for name, pin := range pins {
		if pin <= 0 || pin > 27 {
			return fmt.Errorf("%s must be a BCM pin between 1 and 27, got %d", name, pin)
		}
	}
	for name, pin := range map[string]int{"motors.left.pwm_pin": c.Motors.Left.PWMPin, "motors.right.pwm_pin": c.Motors.Right.PWMPin} {
		switch pin {
		case 0, 12, 13, 18, 19:
		default:
			return fmt.Errorf("%s must be a hardware PWM pin (12, 13, 18 or 19) or 0, got %d", name, pin)
		}
	}
	for i, pin := range c.Indicators.Pins {
		if pin <= 0 || pin > 27 {
			return fmt.Errorf("indicators.pins[%d] must be a BCM pin between 1 and 27, got %d", i, pin)
		}
	}
	if err := c.checkPinUsage(); err != nil {
		return err
	}
	if c.Motors.BaseSpeed < 0 || c.Motors.BaseSpeed > 255 {
		return fmt.Errorf("base_speed must be between 0 and 255, got %d", c.Motors.BaseSpeed)
	}
	if c.Proximity.ChipSelect < 0 || c.Proximity.ChipSelect > 1 {
		return fmt.Errorf("proximity.chip_select must be 0 or 1, got %d", c.Proximity.ChipSelect)
	}
	for name, ch := range map[string]int{"left_channel": c.Proximity.LeftChannel, "right_channel": c.Proximity.RightChannel} {
		if ch < 0 || ch > 7 {
			return fmt.Errorf("proximity.%s must be between 0 and 7, got %d", name, ch)
		}
	}
	if c.Proximity.LeftChannel == c.Proximity.RightChannel {
		return fmt.Errorf("proximity channels must differ, both are %d", c.Proximity.LeftChannel)
	}
	if len(c.Indicators.Pins) > 4 {
		return fmt.Errorf("at most 4 indicator pins supported, got %d", len(c.Indicators.Pins))
	}
	if c.Navigation.ObstacleThreshold < 1 || c.Navigation.ObstacleThreshold > 1023 {
		return fmt.Errorf("obstacle_threshold must be between 1 and 1023, got %d", c.Navigation.ObstacleThreshold)
	}
	if c.Navigation.TicksPerDegree <= 0 {
		return fmt.Errorf("ticks_per_degree must be > 0, got %g", c.Navigation.TicksPerDegree)
	}
	if c.Avoidance.PivotDeg < 0 || c.Avoidance.PivotDeg > 360 {
		return fmt.Errorf("pivot_deg must be between 0 and 360, got %g", c.Avoidance.PivotDeg)
	}
	if c.Avoidance.PivotBackDeg < 0 || c.Avoidance.PivotBackDeg > 360 {
		return fmt.Errorf("pivot_back_deg must be between 0 and 360, got %g", c.Avoidance.PivotBackDeg)
	}
	switch c.Avoidance.EvadeSide {
	case "left", "right", "away":
	default:
		return fmt.Errorf("evade_side must be left, right or away, got %q", c.Avoidance.EvadeSide)
	}
	return nil
}

// spiPins are BCM 7-11, claimed by SPI0 while the MCP3008 is in use.
var spiPins = map[int]bool{7: true, 8: true, 9: true, 10: true, 11: true}

// checkPinUsage rejects a BCM pin assigned to two functions, and pins that
// clash with SPI0 when real hardware is used.
func (c *Config) checkPinUsage() error {
	type use struct {
		name string
		pin  int
	}
	uses := []use{
		{"motors.left.in1_pin", c.Motors.Left.In1Pin},
		{"motors.left.in2_pin", c.Motors.Left.In2Pin},
		{"motors.left.pwm_pin", c.Motors.Left.PWMPin},
		{"motors.right.in1_pin", c.Motors.Right.In1Pin},
		{"motors.right.in2_pin", c.Motors.Right.In2Pin},
		{"motors.right.pwm_pin", c.Motors.Right.PWMPin},
		{"beacon.left_pin", c.Beacon.LeftPin},
		{"beacon.right_pin", c.Beacon.RightPin},
		{"encoders.left_pin", c.Encoders.LeftPin},
		{"encoders.right_pin", c.Encoders.RightPin},
	}
	for i, pin := range c.Indicators.Pins {
		uses = append(uses, use{fmt.Sprintf("indicators.pins[%d]", i), pin})
	}

	owner := make(map[int]string, len(uses))
	for _, u := range uses {
		if u.pin == 0 {
			continue // optional pin left unset
		}
		if prev, ok := owner[u.pin]; ok {
			return fmt.Errorf("BCM pin %d used by both %s and %s", u.pin, prev, u.name)
		}
		owner[u.pin] = u.name
		if !c.Defaults.MockGPIO && spiPins[u.pin] {
			return fmt.Errorf("%s: BCM pin %d is reserved for SPI0 (MCP3008)", u.name, u.pin)
		}
	}
	return nil
}

// BeaconActiveLow reports whether a LOW beacon input means "detected".
func (c *Config) BeaconActiveLow() bool {
	return c.Beacon.ActiveLow == nil || *c.Beacon.ActiveLow
}

// ForwardPulse returns the duration of one forward step of the main loop.
func (c *Config) ForwardPulse() time.Duration {
	return ms(c.Navigation.ForwardPulseMs)
}

// AvoidPause returns the braked pause after the obstacle flash.
func (c *Config) AvoidPause() time.Duration {
	return ms(c.Avoidance.PauseMs)
}

// AvoidReverse returns how long the escape backs up.
func (c *Config) AvoidReverse() time.Duration {
	return ms(c.Avoidance.ReverseMs)
}

// AvoidForward returns how long the escape advances between pivots.
func (c *Config) AvoidForward() time.Duration {
	return ms(c.Avoidance.ForwardMs)
}

// StartupFlash returns the total duration of the power-on pattern.
func (c *Config) StartupFlash() time.Duration {
	return ms(c.Flash.StartupMs)
}

// ObstacleFlash returns the total duration of the obstacle pattern.
func (c *Config) ObstacleFlash() time.Duration {
	return ms(c.Flash.ObstacleMs)
}

// TerminalFlash returns the total duration of the halt pattern.
func (c *Config) TerminalFlash() time.Duration {
	return ms(c.Flash.TerminalMs)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
