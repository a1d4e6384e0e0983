// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package game

import (
	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/imu"
	"github.com/relabs-tech/gyro_games/internal/maze"
	"github.com/relabs-tech/gyro_games/internal/physics"
)

// Frame is what a presenter receives after every playing tick.
type Frame struct {
	Variant Variant         `json:"variant"`
	Mode    Mode            `json:"mode"`
	Tick    uint64          `json:"tick"`
	Level   int             `json:"level"`
	Control imu.AccelSample `json:"control"`
	State   physics.State   `json:"state"`
	Size    float64         `json:"size"`
}

// Presenter is the scene side of a session. All calls arrive on the
// goroutine driving the session and must not block for long.
type Presenter interface {
	// MoveObject places the object at frame.State after a tick.
	MoveObject(frame Frame)
	// ShowMaze rebuilds the wall visuals for a new level.
	ShowMaze(topo *maze.Topology, level int)
	// Calibrated reports a completed calibration run.
	Calibrated(cal control.Calibration)
}

// Presenters fans every call out to each member in order.
type Presenters []Presenter

func (ps Presenters) MoveObject(frame Frame) {
	for _, p := range ps {
		p.MoveObject(frame)
	}
}

func (ps Presenters) ShowMaze(topo *maze.Topology, level int) {
	for _, p := range ps {
		p.ShowMaze(topo, level)
	}
}

func (ps Presenters) Calibrated(cal control.Calibration) {
	for _, p := range ps {
		p.Calibrated(cal)
	}
}
