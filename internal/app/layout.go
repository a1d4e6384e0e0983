// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/maze"
)

// WallThickness is the rendered wall width in screen pixels.
const WallThickness = 2

// MazeLayout is the wire form of a generated level.
type MazeLayout struct {
	Level      int         `json:"level"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	CellWidth  float64     `json:"cell_width"`
	CellHeight float64     `json:"cell_height"`
	BallRadius float64     `json:"ball_radius"`
	Start      maze.Pos    `json:"start"`
	Goal       maze.Pos    `json:"goal"`
	Marker     [2]float64  `json:"marker"`
	Degenerate bool        `json:"degenerate,omitempty"`
	Walls      []maze.Rect `json:"walls"`
	Blocks     []maze.Rect `json:"blocks"`
}

// NewMazeLayout flattens topo into render-ready rectangles.
func NewMazeLayout(topo *maze.Topology, level int) MazeLayout {
	mx, my := topo.MarkerPosition(topo.Goal)
	return MazeLayout{
		Level:      level,
		Rows:       topo.Rows,
		Cols:       topo.Cols,
		Width:      topo.Width,
		Height:     topo.Height,
		CellWidth:  topo.CellWidth,
		CellHeight: topo.CellHeight,
		BallRadius: topo.BallRadius,
		Start:      topo.Start,
		Goal:       topo.Goal,
		Marker:     [2]float64{mx, my},
		Degenerate: topo.Degenerate,
		Walls:      topo.WallRects(WallThickness),
		Blocks:     topo.BlockedRects(),
	}
}

// Event is published for calibrations and level changes.
type Event struct {
	Type        string               `json:"type"` // calibrated, level
	Level       int                  `json:"level,omitempty"`
	Calibration *control.Calibration `json:"calibration,omitempty"`
	Time        time.Time            `json:"time"`
}
