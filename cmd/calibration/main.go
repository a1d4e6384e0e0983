// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// One-shot static bias measurement for the QMI8658 accelerometer.
// Averages CALIBRATION_SAMPLES readings with the board at rest and reports
// the bias, its per-axis spread, a stillness confidence and the resting
// tilt. The games recalibrate on their own at start; this tool is for
// checking a mounting or a board.
//
// Output:
//
//	Writes a JSON file in the working directory, or to stdout with -stdout.
//
// Run:
//
//	go run ./cmd/calibration
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"

	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/imu"
	"github.com/relabs-tech/gyro_games/internal/orientation"
	"github.com/relabs-tech/gyro_games/internal/sensors"
)

const levelTolerance = 2.0 // degrees

// CalibrationResult is the file written by this tool.
type CalibrationResult struct {
	SchemaVersion int                 `json:"schema_version"`
	CalibrationAt string              `json:"calibration_at"` // RFC3339
	Source        string              `json:"source"`
	Calibration   control.Calibration `json:"calibration"`
	RestTilt      orientation.Tilt    `json:"rest_tilt"`
	Level         bool                `json:"level"`
}

func main() {
	in := bufio.NewReader(os.Stdin)

	configPath := flag.String("config", "gyro_config.txt", "Path to configuration file")
	mock := flag.Bool("mock", false, "Calibrate the synthetic source")
	toStdout := flag.Bool("stdout", false, "Print the result instead of writing a file")
	flag.Parse()

	fmt.Println("=== Accelerometer bias calibration ===")
	fmt.Println()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	var (
		src  imu.AccelReader
		name string
	)
	if *mock {
		src, name = sensors.NewMockSource(), "mock"
	} else {
		dev := sensors.NewQMI8658I2C("qmi8658", cfg.I2CBus, cfg.IMUI2CAddr, sensors.QMI8658Opts{
			AccelRange: cfg.IMUAccelRange,
			AccelODR:   cfg.IMUAccelODR,
		})
		defer dev.Close()
		src, name = dev, fmt.Sprintf("qmi8658@0x%02X", cfg.IMUI2CAddr)
	}
	if err := src.Init(); err != nil {
		fatal(errors.Wrap(err, "sensor init failed"))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Println("Place the device on a stable surface and do not touch it.")
	waitEnter(in, fmt.Sprintf("Press ENTER to start capture (%d samples)...", cfg.CalibrationSamples))

	cal, err := control.NewCalibrator(src, cfg.CalibrationSamples, cfg.CalibrationSpacing()).Calibrate(ctx)
	if err != nil {
		fatal(err)
	}

	rest, err := src.ReadRaw()
	if err != nil {
		fatal(errors.Wrap(err, "rest sample"))
	}
	tilt := orientation.FromAccel(rest)

	res := CalibrationResult{
		SchemaVersion: 1,
		CalibrationAt: cal.At.Format(time.RFC3339),
		Source:        name,
		Calibration:   cal,
		RestTilt:      tilt,
		Level:         tilt.Level(levelTolerance),
	}

	fmt.Printf("  bias       X=%+.4f g  Y=%+.4f g\n", cal.Bias.X, cal.Bias.Y)
	fmt.Printf("  stddev     X=%.4f g   Y=%.4f g\n", cal.StdDev.X, cal.StdDev.Y)
	fmt.Printf("  confidence %.2f (%d samples, %d failed)\n", cal.Confidence, cal.Samples, cal.Failed)
	fmt.Printf("  rest tilt  roll=%.1f° pitch=%.1f°\n", tilt.Roll, tilt.Pitch)
	if !res.Level {
		fmt.Println("  WARNING: the board is not level; the bias includes the tilt.")
	}

	if *toStdout {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(b))
		return
	}
	if err := writeResult(res); err != nil {
		fatal(err)
	}
}

// ---------- Output ----------

func writeResult(res CalibrationResult) error {
	ts := time.Now().Format("2006-01-02T15-04-05Z07-00")
	name := fmt.Sprintf("%s_gyro_calibration.json", ts)

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return err
	}
	fmt.Printf("\nWrote: %s\n", name)
	return nil
}

// ---------- Console helpers ----------

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
