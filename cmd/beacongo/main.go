package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cjeanneret/BeaconGo/internal/config"
	"github.com/cjeanneret/BeaconGo/internal/debug"
	"github.com/cjeanneret/BeaconGo/internal/hw/adc"
	"github.com/cjeanneret/BeaconGo/internal/hw/clock"
	"github.com/cjeanneret/BeaconGo/internal/hw/gpio"
	"github.com/cjeanneret/BeaconGo/internal/hw/indicator"
	"github.com/cjeanneret/BeaconGo/internal/hw/motor"
	"github.com/cjeanneret/BeaconGo/internal/hw/sensor"
	"github.com/cjeanneret/BeaconGo/internal/logic/avoid"
	"github.com/cjeanneret/BeaconGo/internal/logic/motion"
	"github.com/cjeanneret/BeaconGo/internal/logic/navigation"
	"github.com/cjeanneret/BeaconGo/internal/logic/seek"
)

func main() {
	// CLI flags
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	obstacleThreshold := flag.Int("obstacle_threshold", 0, "override obstacle threshold (1-1023)")
	baseSpeed := flag.Int("base_speed", 0, "override motor PWM duty (1-255)")
	logPath := flag.String("log", "", "also append debug output to this file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "use config default")
	if err := validateCLIOverrides(*obstacleThreshold, *baseSpeed); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, overrides{ObstacleThreshold: *obstacleThreshold, BaseSpeed: *baseSpeed})

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	var logFile *os.File
	if *logPath != "" && debug.IsEnabled(debug.LevelInfo) {
		logFile, err = os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file failed: %v", err)
		}
		debug.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", debug.Level())

	code := run(ctx, cfg)
	cancel()
	if logFile != nil {
		_ = logFile.Close()
	}
	os.Exit(code)
}

// run opens the hardware and hands it to navigate. The result is the process exit code.
func run(ctx context.Context, cfg *config.Config) int {
	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Printf("init GPIO failed: %v", err)
		return 1
	}

	// Initialize ADC
	debug.Step(2, "Initializing proximity ADC")
	adcReader, err := adc.NewReader(cfg.Defaults.MockGPIO, adc.SPIConfig{
		ChipSelect: uint8(cfg.Proximity.ChipSelect),
		SpeedHz:    cfg.Proximity.SPISpeedHz,
	})
	if err != nil {
		log.Printf("init ADC failed: %v", err)
		closeGPIO(gpioDriver)
		return 1
	}

	return navigate(ctx, cfg, gpioDriver, adcReader, clock.Real{})
}

// navigate wires the robot, runs it and halts on a terminal state.
// It owns g and r: the bridge is braked and both are closed on every path.
func navigate(ctx context.Context, cfg *config.Config, g gpio.Driver, r adc.Reader, clk clock.Clock) int {
	defer closeGPIO(g)
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("closing ADC failed: %v", err)
		}
	}()

	debug.Step(3, "Wiring motors, sensors and controllers")
	rb, err := newRobot(cfg, g, r, clk)
	if err != nil {
		debug.Error(err)
		log.Printf("init robot failed: %v", err)
		return 1
	}
	// Brake before the deferred Close calls release the pins.
	defer func() {
		if err := rb.bridge.Drive(motor.Brake); err != nil {
			log.Printf("final brake failed: %v", err)
		}
	}()

	state, err := rb.run(ctx, cfg)
	logSummary(state, rb.nav.Stats())
	if err != nil && !errors.Is(err, context.Canceled) {
		debug.Error(err)
		log.Printf("navigation failed: %v", err)
		return 1
	}

	if state.Terminal() {
		// Halt: motors stay braked until the process is stopped.
		debug.Info("Halted (%s), waiting for signal", state)
		<-ctx.Done()
	}
	return 0
}

func closeGPIO(g gpio.Driver) {
	if err := g.Close(); err != nil {
		log.Printf("closing GPIO driver failed: %v", err)
	}
}

// logSummary prints the run counters at info level.
func logSummary(state navigation.State, stats navigation.Stats) {
	if !debug.IsEnabled(debug.LevelInfo) {
		return
	}
	debug.Summary("Run Summary")
	debug.Value("State", state)
	debug.Value("Cycles", stats.Cycles)
	debug.Value("Forward pulses", stats.ForwardPulses)
	debug.Value("Avoidances", stats.Avoidances)
	debug.Value("Seek ticks", stats.SeekTicks)
}

// robot holds the wired hardware and controllers.
type robot struct {
	bridge     *motor.HBridge
	indicators *indicator.Bank
	nav        *navigation.Navigator
}

// newRobot builds the whole navigation stack on top of the given drivers.
func newRobot(cfg *config.Config, g gpio.Driver, r adc.Reader, clk clock.Clock) (*robot, error) {
	bridge := motor.NewHBridge(g, motor.Config{
		Left: motor.Wheel{
			In1Pin: cfg.Motors.Left.In1Pin,
			In2Pin: cfg.Motors.Left.In2Pin,
			PWMPin: cfg.Motors.Left.PWMPin,
		},
		Right: motor.Wheel{
			In1Pin: cfg.Motors.Right.In1Pin,
			In2Pin: cfg.Motors.Right.In2Pin,
			PWMPin: cfg.Motors.Right.PWMPin,
		},
		PWMFreqHz: cfg.Motors.PWMFreqHz,
	})
	debug.PrintStruct("Motors config", cfg.Motors)
	if err := bridge.SetSpeed(uint8(cfg.Motors.BaseSpeed)); err != nil {
		return nil, fmt.Errorf("set base speed: %w", err)
	}

	leds, err := indicator.NewBank(g, clk, cfg.Indicators.Pins)
	if err != nil {
		return nil, fmt.Errorf("init indicators: %w", err)
	}

	beacon := sensor.NewBeacon(g, cfg.Beacon.LeftPin, cfg.Beacon.RightPin, cfg.BeaconActiveLow())
	proximity := sensor.NewProximity(r, cfg.Proximity.LeftChannel, cfg.Proximity.RightChannel)
	leftEnc := sensor.NewEncoder(g, cfg.Encoders.LeftPin)
	rightEnc := sensor.NewEncoder(g, cfg.Encoders.RightPin)
	debug.PrintStruct("Beacon config", cfg.Beacon)
	debug.PrintStruct("Proximity config", cfg.Proximity)

	mover := motion.NewController(bridge, leftEnc, rightEnc, clk, cfg.Navigation.TicksPerDegree)
	seeker := seek.NewSeeker(beacon, mover, leftEnc, mover.Ratio())
	maneuver := avoid.NewManeuver(mover, beacon, leds, avoid.Plan{
		Flash:        cfg.ObstacleFlash(),
		Pause:        cfg.AvoidPause(),
		Reverse:      cfg.AvoidReverse(),
		PivotDeg:     cfg.Avoidance.PivotDeg,
		Forward:      cfg.AvoidForward(),
		PivotBackDeg: cfg.Avoidance.PivotBackDeg,
		Evade:        avoid.Side(cfg.Avoidance.EvadeSide),
	})
	debug.PrintStruct("Avoidance config", cfg.Avoidance)

	nav := navigation.NewNavigator(seeker, proximity, maneuver, mover, leds, navigation.Params{
		ObstacleThreshold: uint16(cfg.Navigation.ObstacleThreshold),
		ForwardPulse:      cfg.ForwardPulse(),
		TerminalFlash:     cfg.TerminalFlash(),
	})
	debug.PrintStruct("Navigation config", cfg.Navigation)

	return &robot{bridge: bridge, indicators: leds, nav: nav}, nil
}

// run shows the startup pattern and drives the navigator to a terminal state.
func (r *robot) run(ctx context.Context, cfg *config.Config) (navigation.State, error) {
	debug.Section("Startup")
	if err := r.indicators.Flash(cfg.StartupFlash()); err != nil {
		return navigation.Navigating, fmt.Errorf("startup flash: %w", err)
	}
	debug.Section("Navigating")
	return r.nav.Run(ctx)
}

// overrides carries CLI values. Zero means "use config value".
type overrides struct {
	ObstacleThreshold int
	BaseSpeed         int
}

// validateCLIOverrides checks that non-zero CLI overrides are within valid ranges.
// Zero values are ignored (they mean "use config default").
func validateCLIOverrides(threshold, speed int) error {
	if threshold != 0 && (threshold < 1 || threshold > adc.MaxValue) {
		return fmt.Errorf("obstacle_threshold must be between 1 and %d, got %d", adc.MaxValue, threshold)
	}
	if speed != 0 && (speed < 1 || speed > 255) {
		return fmt.Errorf("base_speed must be between 1 and 255, got %d", speed)
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only non-zero override values are applied.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.ObstacleThreshold > 0 {
		cfg.Navigation.ObstacleThreshold = o.ObstacleThreshold
	}
	if o.BaseSpeed > 0 {
		cfg.Motors.BaseSpeed = o.BaseSpeed
	}
}
