// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package maze

import (
	"math"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
)

// Generator builds mazes for a fixed grid and play field.
type Generator struct {
	Rows   int
	Cols   int
	Width  float64
	Height float64
	// CornerFraction sizes the rounded corner cut as a fraction of the
	// smaller screen dimension.
	CornerFraction float64
	// BallFraction scales the ball diameter relative to the smaller cell side.
	BallFraction float64
	Tolerance    float64

	// Rand drives neighbour selection. A nil Rand is seeded from the
	// runtime source on first use.
	Rand *rand.Rand
}

var offsets = [4]Pos{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Generate returns a new perfect maze over the valid cells.
func (g *Generator) Generate() *Topology {
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	t := &Topology{
		Rows:       g.Rows,
		Cols:       g.Cols,
		Width:      g.Width,
		Height:     g.Height,
		CellWidth:  g.Width / float64(g.Cols),
		CellHeight: g.Height / float64(g.Rows),
		Tolerance:  g.Tolerance,
		cells:      make([]Cell, g.Rows*g.Cols),
	}
	t.BallRadius = math.Min(t.CellWidth, t.CellHeight) / 2 * g.BallFraction

	g.mask(t)
	g.pickEnds(t)
	g.carve(t)

	log.WithFields(log.Fields{
		"rows":  t.Rows,
		"cols":  t.Cols,
		"valid": t.ValidCount(),
		"start": t.Start,
		"goal":  t.Goal,
	}).Debug("maze: generated")
	return t
}

// mask closes every wall and excludes cells with a corner in one of the
// four rounded screen corners.
func (g *Generator) mask(t *Topology) {
	radius := g.CornerFraction * math.Min(g.Width, g.Height)

	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			x0 := float64(c) * t.CellWidth
			y0 := float64(r) * t.CellHeight
			x1 := x0 + t.CellWidth
			y1 := y0 + t.CellHeight

			valid := !g.cutAway(x0, y0, radius) && !g.cutAway(x1, y0, radius) &&
				!g.cutAway(x0, y1, radius) && !g.cutAway(x1, y1, radius)

			t.cells[r*t.Cols+c] = Cell{
				Top: true, Right: true, Bottom: true, Left: true,
				Valid:   valid,
				Visited: !valid,
			}
		}
	}
}

// cutAway reports whether (x, y) lies inside a corner box of the given
// radius and outside the circle inscribed in it.
func (g *Generator) cutAway(x, y, radius float64) bool {
	if radius <= 0 {
		return false
	}
	var cx, cy float64
	switch {
	case x < radius:
		cx = radius
	case x > g.Width-radius:
		cx = g.Width - radius
	default:
		return false
	}
	switch {
	case y < radius:
		cy = radius
	case y > g.Height-radius:
		cy = g.Height - radius
	default:
		return false
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy > radius*radius
}

// pickEnds selects the first valid cell in row-major order as start and
// the last one as goal. With no valid cell the centre cell is forced valid
// and serves as both.
func (g *Generator) pickEnds(t *Topology) {
	found := false
	for i, cell := range t.cells {
		if cell.Valid {
			t.Start = Pos{Row: i / t.Cols, Col: i % t.Cols}
			found = true
			break
		}
	}
	for i := len(t.cells) - 1; i >= 0; i-- {
		if t.cells[i].Valid {
			t.Goal = Pos{Row: i / t.Cols, Col: i % t.Cols}
			break
		}
	}
	if found {
		return
	}

	center := Pos{Row: t.Rows / 2, Col: t.Cols / 2}
	idx := center.Row*t.Cols + center.Col
	t.cells[idx].Valid = true
	t.cells[idx].Visited = false
	t.Start, t.Goal = center, center
	t.Degenerate = true
	log.WithFields(log.Fields{
		"rows":            t.Rows,
		"cols":            t.Cols,
		"corner_fraction": g.CornerFraction,
	}).Error("maze: no valid cell, falling back to the centre cell")
}

// carve runs randomized depth-first backtracking from the start cell with
// an explicit stack.
func (g *Generator) carve(t *Topology) {
	stack := make([]Pos, 0, len(t.cells))
	stack = append(stack, t.Start)
	t.cells[t.Start.Row*t.Cols+t.Start.Col].Visited = true

	var candidates [4]int
	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		n := 0
		for dir, off := range offsets {
			nr, nc := cur.Row+off.Row, cur.Col+off.Col
			if nr < 0 || nr >= t.Rows || nc < 0 || nc >= t.Cols {
				continue
			}
			if !t.cells[nr*t.Cols+nc].Visited {
				candidates[n] = dir
				n++
			}
		}
		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		dir := candidates[g.Rand.IntN(n)]
		next := Pos{Row: cur.Row + offsets[dir].Row, Col: cur.Col + offsets[dir].Col}
		t.openWall(cur, next, dir)
		t.cells[next.Row*t.Cols+next.Col].Visited = true
		stack = append(stack, next)
	}
}

// openWall removes the wall between a and its neighbour b in direction dir.
func (t *Topology) openWall(a, b Pos, dir int) {
	ca := &t.cells[a.Row*t.Cols+a.Col]
	cb := &t.cells[b.Row*t.Cols+b.Col]
	switch dir {
	case 0:
		ca.Top, cb.Bottom = false, false
	case 1:
		ca.Right, cb.Left = false, false
	case 2:
		ca.Bottom, cb.Top = false, false
	case 3:
		ca.Left, cb.Right = false, false
	}
}
