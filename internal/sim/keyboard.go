// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sim provides a virtual accelerometer tilted by arrow keys.
package sim

import (
	"math"
	"sync"

	"github.com/relabs-tech/gyro_games/internal/imu"
	"github.com/relabs-tech/gyro_games/internal/physics"
)

const (
	tiltStep  = 0.02 // g per update while a key is held
	tiltMax   = 0.5
	tiltDecay = 0.8
)

// Input is the arrow key state of one update.
type Input struct {
	Left, Right, Up, Down bool
}

// KeyboardSource is an imu.AccelReader whose tilt follows the arrow keys.
// Samples are reported in the sensor frame so the configured mounting
// turns them back into screen directions.
type KeyboardSource struct {
	mounting physics.Mounting

	mu     sync.Mutex
	fx, fy float64 // screen-frame tilt
}

func NewKeyboardSource(m physics.Mounting) *KeyboardSource {
	return &KeyboardSource{mounting: m}
}

func (k *KeyboardSource) Init() error { return nil }

func (k *KeyboardSource) ReadRaw() (imu.AccelSample, error) {
	k.mu.Lock()
	fx, fy := k.fx, k.fy
	k.mu.Unlock()

	inverse := physics.Mounting(360 - ((int(k.mounting)%360)+360)%360)
	x, y := inverse.Force(imu.AccelSample{X: fx, Y: fy})
	return imu.AccelSample{X: x, Y: y, Z: 1}, nil
}

// Update ramps the tilt toward the held directions and lets released axes
// settle back to level.
func (k *KeyboardSource) Update(in Input) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.fx = ramp(k.fx, in.Left, in.Right)
	k.fy = ramp(k.fy, in.Up, in.Down)
}

// Tilt returns the screen-frame tilt.
func (k *KeyboardSource) Tilt() (fx, fy float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.fx, k.fy
}

func ramp(v float64, neg, pos bool) float64 {
	switch {
	case pos && !neg:
		return math.Min(v+tiltStep, tiltMax)
	case neg && !pos:
		return math.Max(v-tiltStep, -tiltMax)
	}
	v *= tiltDecay
	if math.Abs(v) < 0.001 {
		return 0
	}
	return v
}
