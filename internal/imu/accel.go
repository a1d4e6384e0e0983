// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// AccelSample is one instantaneous acceleration reading in g.
// Only X and Y drive the games; Z is kept for calibration tooling.
type AccelSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// AccelReader is anything that can provide raw accelerometer samples.
type AccelReader interface {
	// Init performs one-time device setup. Calling it again after a
	// successful init is a no-op.
	Init() error
	// ReadRaw issues one transport transaction.
	ReadRaw() (AccelSample, error)
}
