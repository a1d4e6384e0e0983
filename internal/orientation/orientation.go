// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

// Tilt is the board attitude relative to gravity, in degrees.
type Tilt struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// FromAccel computes roll and pitch from a gravity reading.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// A sample without Z is taken as lying flat, az = sqrt(1 - ax² - ay²).
func FromAccel(s imu.AccelSample) Tilt {
	az := s.Z
	if az == 0 {
		az = math.Sqrt(math.Max(0, 1-s.X*s.X-s.Y*s.Y))
	}
	rollRad := math.Atan2(s.Y, az)
	pitchRad := math.Atan2(-s.X, math.Sqrt(s.Y*s.Y+az*az))

	return Tilt{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// Level reports whether both angles are within tolerance degrees of flat.
func (t Tilt) Level(tolerance float64) bool {
	return math.Abs(t.Roll) <= tolerance && math.Abs(t.Pitch) <= tolerance
}
