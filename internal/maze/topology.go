// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package maze generates perfect mazes over a grid whose rounded corners
// are cut away, and answers collision queries against them.
//
// A Topology is immutable once Generate returns it. The collision
// validator and every presenter read the same value; a new level replaces
// it wholesale.
package maze

import "math"

// Cell is one grid square. Walls start closed and are opened by
// generation. Invalid cells lie outside the playable region.
type Cell struct {
	Top     bool `json:"top"`
	Right   bool `json:"right"`
	Bottom  bool `json:"bottom"`
	Left    bool `json:"left"`
	Visited bool `json:"-"`
	Valid   bool `json:"valid"`
}

// Pos addresses a cell.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Topology is a generated maze and its pixel geometry.
type Topology struct {
	Rows       int
	Cols       int
	Width      float64
	Height     float64
	CellWidth  float64
	CellHeight float64
	BallRadius float64
	Tolerance  float64
	Start      Pos
	Goal       Pos
	// Degenerate is set when no valid cell existed and the centre cell
	// was forced valid as both start and goal.
	Degenerate bool

	cells []Cell
}

// Cell returns the cell at (row, col). Out of range positions return a
// closed, invalid cell.
func (t *Topology) Cell(row, col int) Cell {
	if row < 0 || row >= t.Rows || col < 0 || col >= t.Cols {
		return Cell{Top: true, Right: true, Bottom: true, Left: true, Visited: true}
	}
	return t.cells[row*t.Cols+col]
}

// Cells returns a copy of the grid in row-major order.
func (t *Topology) Cells() []Cell {
	return append([]Cell(nil), t.cells...)
}

// BallSize is the side of the object's bounding square.
func (t *Topology) BallSize() float64 { return t.BallRadius * 2 }

// CellAt returns the cell containing the point (x, y), clamped to the grid.
func (t *Topology) CellAt(x, y float64) Pos {
	return Pos{
		Row: clampIndex(int(math.Floor(y/t.CellHeight)), t.Rows),
		Col: clampIndex(int(math.Floor(x/t.CellWidth)), t.Cols),
	}
}

// CenterCell returns the cell under the centre of an object whose
// bounding square starts at (x, y).
func (t *Topology) CenterCell(x, y float64) Pos {
	return t.CellAt(x+t.BallRadius, y+t.BallRadius)
}

// Place returns the top-left position that centres the object in p.
func (t *Topology) Place(p Pos) (x, y float64) {
	x = float64(p.Col)*t.CellWidth + (t.CellWidth-t.BallSize())/2
	y = float64(p.Row)*t.CellHeight + (t.CellHeight-t.BallSize())/2
	return x, y
}

// MarkerPosition returns the centre of cell p in pixels.
func (t *Topology) MarkerPosition(p Pos) (x, y float64) {
	return (float64(p.Col) + 0.5) * t.CellWidth, (float64(p.Row) + 0.5) * t.CellHeight
}

// ValidCount returns the number of playable cells.
func (t *Topology) ValidCount() int {
	n := 0
	for _, c := range t.cells {
		if c.Valid {
			n++
		}
	}
	return n
}

// OpenEdges counts passages between adjacent valid cells.
func (t *Topology) OpenEdges() int {
	n := 0
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			cell := t.Cell(r, c)
			if !cell.Valid {
				continue
			}
			if c+1 < t.Cols && !cell.Right && t.Cell(r, c+1).Valid {
				n++
			}
			if r+1 < t.Rows && !cell.Bottom && t.Cell(r+1, c).Valid {
				n++
			}
		}
	}
	return n
}

// Reachable returns every cell reachable from the start through open
// walls, in breadth-first order.
func (t *Topology) Reachable() []Pos {
	seen := make([]bool, len(t.cells))
	queue := []Pos{t.Start}
	seen[t.Start.Row*t.Cols+t.Start.Col] = true
	for i := 0; i < len(queue); i++ {
		p := queue[i]
		for _, n := range t.passages(p) {
			idx := n.Row*t.Cols + n.Col
			if !seen[idx] {
				seen[idx] = true
				queue = append(queue, n)
			}
		}
	}
	return queue
}

// passages lists neighbours of p joined to it by an open wall.
func (t *Topology) passages(p Pos) []Pos {
	cell := t.Cell(p.Row, p.Col)
	var out []Pos
	if !cell.Top && p.Row > 0 {
		out = append(out, Pos{p.Row - 1, p.Col})
	}
	if !cell.Right && p.Col+1 < t.Cols {
		out = append(out, Pos{p.Row, p.Col + 1})
	}
	if !cell.Bottom && p.Row+1 < t.Rows {
		out = append(out, Pos{p.Row + 1, p.Col})
	}
	if !cell.Left && p.Col > 0 {
		out = append(out, Pos{p.Row, p.Col - 1})
	}
	return out
}

// WallRects returns the closed walls of valid cells as rectangles of the
// given thickness: top and left for every cell, plus bottom on the last
// row and right on the last column. Interior bottom/right walls coincide
// with the neighbour's top/left.
func (t *Topology) WallRects(thickness float64) []Rect {
	var out []Rect
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			cell := t.Cell(r, c)
			if !cell.Valid {
				continue
			}
			x := math.Floor(float64(c) * t.CellWidth)
			y := math.Floor(float64(r) * t.CellHeight)
			w := math.Floor(t.CellWidth)
			h := math.Floor(t.CellHeight)

			if cell.Top {
				out = append(out, Rect{X: x, Y: y, W: w + thickness, H: thickness})
			}
			if cell.Left {
				out = append(out, Rect{X: x, Y: y, W: thickness, H: h + thickness})
			}
			if r == t.Rows-1 && cell.Bottom {
				out = append(out, Rect{X: x, Y: y + h, W: w + thickness, H: thickness})
			}
			if c == t.Cols-1 && cell.Right {
				out = append(out, Rect{X: x + w, Y: y, W: thickness, H: h + thickness})
			}
		}
	}
	return out
}

// BlockedRects returns solid blocks covering the invalid cells, sized so
// neighbouring blocks leave no gaps.
func (t *Topology) BlockedRects() []Rect {
	var out []Rect
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			if t.Cell(r, c).Valid {
				continue
			}
			x0 := math.Floor(float64(c) * t.CellWidth)
			y0 := math.Floor(float64(r) * t.CellHeight)
			x1 := math.Floor(float64(c+1) * t.CellWidth)
			y1 := math.Floor(float64(r+1) * t.CellHeight)
			out = append(out, Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0})
		}
	}
	return out
}

// Blocked lists the invalid cells.
func (t *Topology) Blocked() []Pos {
	var out []Pos
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			if !t.Cell(r, c).Valid {
				out = append(out, Pos{r, c})
			}
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
