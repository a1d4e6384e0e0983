// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config holds all application configuration values.
type Config struct {
	// IMU Hardware
	I2CBus        string // periph bus name, "" selects the first bus
	IMUI2CAddr    uint16
	IMUAccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelODR   byte // QMI8658 CTRL2 ODR code (0-8)

	// Timing
	TickInterval        int // milliseconds
	CalibrationSamples  int
	CalibrationInterval int // milliseconds

	// Signal conditioning
	InputSmoothing      float64
	CalibrationDeadzone float64

	// Physics
	PhysicsFriction    float64
	PhysicsAccelFactor float64
	BallBounce         float64
	BallMaxVel         float64
	MazeBounce         float64
	MazeMaxVel         float64
	MountingRotation   int // degrees: 0, 90, 180 or 270

	// Play field
	ScreenWidth  int
	ScreenHeight int
	BallBoxSize  int

	// Maze
	MazeRows           int
	MazeCols           int
	MazeCornerFraction float64
	MazeBallFraction   float64
	MazeWallTolerance  float64

	// MQTT
	MQTTBroker        string // empty disables telemetry
	MQTTClientID      string
	TopicState        string
	TopicMaze         string
	TopicEvents       string
	TopicCommand      string
	TelemetryInterval int // ticks between state publishes

	// Web Server
	WebServerPort int // 0 disables the web view

	// Display
	DisplayEnabled        bool
	DisplayI2CBus         string
	DisplayUpdateInterval int // ticks between redraws

	LogLevel string
}

// Default returns a configuration carrying the firmware defaults.
// Values read from a file override these.
func Default() *Config {
	return &Config{
		IMUI2CAddr:    0x6B,
		IMUAccelRange: 0,
		IMUAccelODR:   0x04,

		TickInterval:        20,
		CalibrationSamples:  100,
		CalibrationInterval: 5,

		InputSmoothing:      0.3,
		CalibrationDeadzone: 0.015,

		PhysicsFriction:    0.90,
		PhysicsAccelFactor: 3.5,
		BallBounce:         0.5,
		BallMaxVel:         30.0,
		MazeBounce:         0.3,
		MazeMaxVel:         15.0,
		MountingRotation:   90,

		ScreenWidth:  410,
		ScreenHeight: 502,
		BallBoxSize:  50,

		MazeRows:           12,
		MazeCols:           12,
		MazeCornerFraction: 0.20,
		MazeBallFraction:   0.7,
		MazeWallTolerance:  1.0,

		MQTTClientID:      "gyro-games",
		TopicState:        "gyro/state",
		TopicMaze:         "gyro/maze",
		TopicEvents:       "gyro/events",
		TopicCommand:      "gyro/command",
		TelemetryInterval: 5,

		DisplayUpdateInterval: 5,

		LogLevel: "info",
	}
}

// Load reads the configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, errors.Wrapf(err, "config line %d", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// IMU Hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "IMU_I2C_ADDR":
		c.IMUI2CAddr, err = parseAddr(key, value)
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseByte(key, value, 0, 3)
	case "IMU_ACCEL_ODR":
		c.IMUAccelODR, err = parseByte(key, value, 0, 8)

	// Timing
	case "TICK_INTERVAL":
		c.TickInterval, err = parseInt(key, value, 1, 1000)
	case "CALIBRATION_SAMPLES":
		c.CalibrationSamples, err = parseInt(key, value, 1, 10000)
	case "CALIBRATION_INTERVAL":
		c.CalibrationInterval, err = parseInt(key, value, 0, 1000)

	// Signal conditioning
	case "INPUT_SMOOTHING":
		c.InputSmoothing, err = parseFloat(key, value)
	case "CALIBRATION_DEADZONE":
		c.CalibrationDeadzone, err = parseFloat(key, value)

	// Physics
	case "PHYSICS_FRICTION":
		c.PhysicsFriction, err = parseFloat(key, value)
	case "PHYSICS_ACCEL_FACTOR":
		c.PhysicsAccelFactor, err = parseFloat(key, value)
	case "BALL_BOUNCE":
		c.BallBounce, err = parseFloat(key, value)
	case "BALL_MAX_VEL":
		c.BallMaxVel, err = parseFloat(key, value)
	case "MAZE_BOUNCE":
		c.MazeBounce, err = parseFloat(key, value)
	case "MAZE_MAX_VEL":
		c.MazeMaxVel, err = parseFloat(key, value)
	case "MOUNTING_ROTATION":
		c.MountingRotation, err = parseInt(key, value, 0, 270)
		if err == nil && c.MountingRotation%90 != 0 {
			return errors.Errorf("MOUNTING_ROTATION must be 0, 90, 180 or 270, got %d", c.MountingRotation)
		}

	// Play field
	case "SCREEN_WIDTH":
		c.ScreenWidth, err = parseInt(key, value, 1, 8192)
	case "SCREEN_HEIGHT":
		c.ScreenHeight, err = parseInt(key, value, 1, 8192)
	case "BALL_BOX_SIZE":
		c.BallBoxSize, err = parseInt(key, value, 1, 8192)

	// Maze
	case "MAZE_ROWS":
		c.MazeRows, err = parseInt(key, value, 1, 256)
	case "MAZE_COLS":
		c.MazeCols, err = parseInt(key, value, 1, 256)
	case "MAZE_CORNER_FRACTION":
		c.MazeCornerFraction, err = parseFloat(key, value)
	case "MAZE_BALL_FRACTION":
		c.MazeBallFraction, err = parseFloat(key, value)
	case "MAZE_WALL_TOLERANCE":
		c.MazeWallTolerance, err = parseFloat(key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_STATE":
		c.TopicState = value
	case "TOPIC_MAZE":
		c.TopicMaze = value
	case "TOPIC_EVENTS":
		c.TopicEvents = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TELEMETRY_INTERVAL":
		c.TelemetryInterval, err = parseInt(key, value, 1, 100000)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 0, 65535)

	// Display
	case "DISPLAY_ENABLED":
		c.DisplayEnabled, err = strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid DISPLAY_ENABLED %q", value)
		}
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value, 1, 100000)

	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return errors.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", key, value)
	}
	if v < lo || v > hi {
		return 0, errors.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func parseByte(key, value string, lo, hi int) (byte, error) {
	v, err := parseInt(key, value, lo, hi)
	return byte(v), err
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", key, value)
	}
	return uint16(addr), nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", key, value)
	}
	return v, nil
}

// validate checks cross-field constraints and coefficient ranges.
func (c *Config) validate() error {
	if c.InputSmoothing <= 0 || c.InputSmoothing >= 1 {
		return errors.Errorf("INPUT_SMOOTHING must be in (0,1), got %g", c.InputSmoothing)
	}
	if c.CalibrationDeadzone < 0 {
		return errors.Errorf("CALIBRATION_DEADZONE must not be negative, got %g", c.CalibrationDeadzone)
	}
	if c.PhysicsFriction <= 0 || c.PhysicsFriction > 1 {
		return errors.Errorf("PHYSICS_FRICTION must be in (0,1], got %g", c.PhysicsFriction)
	}
	if c.BallMaxVel <= 0 || c.MazeMaxVel <= 0 {
		return errors.New("BALL_MAX_VEL and MAZE_MAX_VEL must be positive")
	}
	if c.BallBounce < 0 || c.BallBounce > 1 || c.MazeBounce < 0 || c.MazeBounce > 1 {
		return errors.New("BALL_BOUNCE and MAZE_BOUNCE must be in [0,1]")
	}
	if c.BallBoxSize > c.ScreenWidth || c.BallBoxSize > c.ScreenHeight {
		return errors.Errorf("BALL_BOX_SIZE %d does not fit a %dx%d screen", c.BallBoxSize, c.ScreenWidth, c.ScreenHeight)
	}
	if c.MazeCornerFraction < 0 || c.MazeCornerFraction > 0.5 {
		return errors.Errorf("MAZE_CORNER_FRACTION must be in [0,0.5], got %g", c.MazeCornerFraction)
	}
	if c.MazeBallFraction <= 0 || c.MazeBallFraction > 1 {
		return errors.Errorf("MAZE_BALL_FRACTION must be in (0,1], got %g", c.MazeBallFraction)
	}
	if c.MQTTBroker != "" && c.MQTTClientID == "" {
		return errors.New("MQTT_CLIENT_ID is required when MQTT_BROKER is set")
	}
	return nil
}

// Tick returns the fixed game loop interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// CalibrationSpacing returns the delay between two calibration samples.
func (c *Config) CalibrationSpacing() time.Duration {
	return time.Duration(c.CalibrationInterval) * time.Millisecond
}
