// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package maze

import "math"

// Collides reports whether the object's bounding square at (x, y) crosses
// a closed wall of any cell it overlaps. Walls are treated as the cell
// edges with Tolerance pixels of slack. It is an overlap test at the
// proposed position, not a sweep, which holds while per-tick motion stays
// small relative to the cell size.
func (t *Topology) Collides(x, y float64) bool {
	d := t.BallSize()

	c1 := clampIndex(int(math.Floor(x/t.CellWidth)), t.Cols)
	r1 := clampIndex(int(math.Floor(y/t.CellHeight)), t.Rows)
	c2 := clampIndex(int(math.Floor((x+d)/t.CellWidth)), t.Cols)
	r2 := clampIndex(int(math.Floor((y+d)/t.CellHeight)), t.Rows)

	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			cell := t.cells[r*t.Cols+c]
			cellX := float64(c) * t.CellWidth
			cellY := float64(r) * t.CellHeight

			if cell.Top && y < cellY+t.Tolerance {
				return true
			}
			if cell.Bottom && y+d > cellY+t.CellHeight-t.Tolerance {
				return true
			}
			if cell.Left && x < cellX+t.Tolerance {
				return true
			}
			if cell.Right && x+d > cellX+t.CellWidth-t.Tolerance {
				return true
			}
		}
	}
	return false
}
