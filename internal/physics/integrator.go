// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package physics advances the tilt-driven object one fixed tick at a time
// and resolves it against the play-field bounds or a maze.
package physics

import (
	"math"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

// State is the object's position (top-left of its bounding square) and
// velocity, in pixels and pixels per tick.
type State struct {
	PosX float64 `json:"pos_x"`
	PosY float64 `json:"pos_y"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
}

// Params are the per-game physics constants.
type Params struct {
	AccelFactor float64
	Friction    float64 // per-tick velocity retention, (0,1]
	Bounce      float64 // energy kept on reflection
	MaxVel      float64 // terminal velocity per axis
	Mounting    Mounting
}

// Field is the rectangular play area and the object's square size.
type Field struct {
	Width      float64
	Height     float64
	ObjectSize float64
}

// MaxX is the largest valid PosX.
func (f Field) MaxX() float64 { return f.Width - f.ObjectSize }

// MaxY is the largest valid PosY.
func (f Field) MaxY() float64 { return f.Height - f.ObjectSize }

// Collider reports whether the object placed at (x, y) hits a wall.
type Collider interface {
	Collides(x, y float64) bool
}

// Mounting rotates sensor axes into screen axes, in degrees counter
// clockwise. The boards this runs on are mounted at 90: force_x = -cy,
// force_y = cx.
type Mounting int

// Force maps a control vector to screen-space force.
func (m Mounting) Force(control imu.AccelSample) (fx, fy float64) {
	switch ((int(m) % 360) + 360) % 360 {
	case 90:
		return -control.Y, control.X
	case 180:
		return -control.X, -control.Y
	case 270:
		return control.Y, -control.X
	default:
		return control.X, control.Y
	}
}

// drive applies force, friction and the velocity clamp.
func drive(s State, control imu.AccelSample, p Params) State {
	fx, fy := p.Mounting.Force(control)

	s.VelX += fx * p.AccelFactor
	s.VelY += fy * p.AccelFactor

	s.VelX *= p.Friction
	s.VelY *= p.Friction

	s.VelX = clamp(s.VelX, -p.MaxVel, p.MaxVel)
	s.VelY = clamp(s.VelY, -p.MaxVel, p.MaxVel)
	return s
}

// StepOpen advances one tick in an open field. Each axis is clamped to
// the field independently and reflects off the edge it hits.
func StepOpen(s State, control imu.AccelSample, p Params, f Field) State {
	s = drive(s, control, p)

	s.PosX += s.VelX
	s.PosY += s.VelY

	if s.PosX < 0 {
		s.PosX = 0
		s.VelX = -s.VelX * p.Bounce
	}
	if s.PosX > f.MaxX() {
		s.PosX = f.MaxX()
		s.VelX = -s.VelX * p.Bounce
	}
	if s.PosY < 0 {
		s.PosY = 0
		s.VelY = -s.VelY * p.Bounce
	}
	if s.PosY > f.MaxY() {
		s.PosY = f.MaxY()
		s.VelY = -s.VelY * p.Bounce
	}
	return s
}

// StepMaze advances one tick inside a maze. X is resolved first at the old
// Y, then Y at the resolved X. An axis that leaves the screen or hits a
// wall reverts to its pre-tick value and reflects; the other axis keeps
// its move so the object slides along walls. Resolving x before y lets the
// object cut some corners in one direction only.
func StepMaze(s State, control imu.AccelSample, p Params, f Field, c Collider) State {
	s = drive(s, control, p)

	nextX := s.PosX + s.VelX
	nextY := s.PosY + s.VelY

	if nextX < 0 || nextX > f.MaxX() || c.Collides(nextX, s.PosY) {
		nextX = s.PosX
		s.VelX = -s.VelX * p.Bounce
	}
	if nextY < 0 || nextY > f.MaxY() || c.Collides(nextX, nextY) {
		nextY = s.PosY
		s.VelY = -s.VelY * p.Bounce
	}

	s.PosX = nextX
	s.PosY = nextY
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
