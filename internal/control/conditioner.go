// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control turns raw accelerometer samples into the control vector
// that drives the physics: static bias calibration, exponential smoothing
// and a deadzone.
package control

import (
	"math"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

// Bias is the static sensor offset measured at rest.
type Bias struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FilterState is the exponential filter accumulator.
type FilterState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Params configures the conditioner.
type Params struct {
	Alpha    float64 // smoothing factor in (0,1), smaller is smoother
	Deadzone float64 // |smoothed| below this snaps to 0
}

// Condition runs one sample through bias removal, smoothing and the
// deadzone, in that order. The deadzoned value is also the new filter
// state. The bias is only subtracted once calibration has completed.
func Condition(raw imu.AccelSample, bias Bias, calibrated bool, prior FilterState, p Params) (imu.AccelSample, FilterState) {
	x, y := raw.X, raw.Y
	if calibrated {
		x -= bias.X
		y -= bias.Y
	}

	next := FilterState{
		X: deadzone(prior.X+p.Alpha*(x-prior.X), p.Deadzone),
		Y: deadzone(prior.Y+p.Alpha*(y-prior.Y), p.Deadzone),
	}
	return imu.AccelSample{X: next.X, Y: next.Y}, next
}

func deadzone(v, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

// Conditioner holds the bias and filter state of one session.
type Conditioner struct {
	params     Params
	bias       Bias
	calibrated bool
	state      FilterState
}

func NewConditioner(p Params) *Conditioner {
	return &Conditioner{params: p}
}

// Apply conditions one raw sample and returns the control vector.
func (c *Conditioner) Apply(raw imu.AccelSample) imu.AccelSample {
	var out imu.AccelSample
	out, c.state = Condition(raw, c.bias, c.calibrated, c.state, c.params)
	return out
}

// SetBias installs a new calibration and zeroes the filter so a stale
// smoothed value does not leak into post-calibration output.
func (c *Conditioner) SetBias(b Bias) {
	c.bias = b
	c.calibrated = true
	c.state = FilterState{}
}

// Bias returns the current bias and whether a calibration has completed.
func (c *Conditioner) Bias() (Bias, bool) { return c.bias, c.calibrated }

func (c *Conditioner) State() FilterState { return c.state }
