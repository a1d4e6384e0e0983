// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

// MockSource generates a slowly wandering tilt, for running the games
// without hardware.
type MockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock accelerometer that tilts smoothly over time.
func NewMockSource() *MockSource {
	return &MockSource{start: time.Now(), now: time.Now}
}

func (m *MockSource) Init() error { return nil }

func (m *MockSource) ReadRaw() (imu.AccelSample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	return imu.AccelSample{
		X: 0.25 * math.Sin(elapsed*0.9),
		Y: 0.20 * math.Cos(elapsed*0.6),
		Z: 1,
	}, nil
}
