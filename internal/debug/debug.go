package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (config, terminal state)
	LevelLive    = 2 // Live info (drive commands, turns, obstacles)
	LevelVerbose = 3 // Verbose (sensor readings, maneuver steps)
	LevelTrace   = 4 // Trace (GPIO, ADC, very low level)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (configuration, terminal state)
// 2 = live info (drive commands, turns, obstacles)
// 3 = verbose (sensor readings, maneuver steps)
// 4 = trace (GPIO, ADC, very low level)
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New(os.Stdout, "[BeaconGo] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. It has no effect while debug is off.
func SetOutput(w io.Writer) {
	if logger != nil {
		logger.SetOutput(w)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// Terminal prints the terminal state the robot halted in (level 1).
func Terminal(state string, cycles int) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] Halted in state %s after %d cycles", state, cycles)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// Drive prints a drive command (level 2).
func Drive(direction string, hold time.Duration) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Drive %s for %v", direction, hold)
	}
}

// Turn prints a completed closed-loop turn (level 2).
func Turn(direction string, target, ticks int) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Turn %s: %d/%d ticks", direction, ticks, target)
	}
}

// Obstacle prints a proximity reading that triggered avoidance (level 2).
func Obstacle(left, right, threshold uint16) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Obstacle: left=%d right=%d (threshold %d)", left, right, threshold)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message.
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[GPIO] %s pin=%d value=%v", operation, pin, value)
	}
}

// ADC prints an analog conversion (level 4).
func ADC(channel int, value uint16) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[ADC] channel=%d value=%d", channel, value)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}

// Fmt returns a formatted string only if debug is enabled
// (to avoid unnecessary allocations).
func Fmt(format string, args ...interface{}) string {
	if level > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}
