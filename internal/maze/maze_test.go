// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package maze

import (
	"math/rand/v2"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func newGenerator(fraction float64, seed uint64) *Generator {
	return &Generator{
		Rows:           12,
		Cols:           12,
		Width:          410,
		Height:         502,
		CornerFraction: fraction,
		BallFraction:   0.7,
		Tolerance:      1,
		Rand:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func TestGenerateFullGrid(t *testing.T) {
	Convey("Given a 12x12 grid without corner exclusion", t, func() {
		topo := newGenerator(0, 1).Generate()

		Convey("Every cell is valid", func() {
			So(topo.ValidCount(), ShouldEqual, 144)
			So(topo.Blocked(), ShouldBeEmpty)
			So(topo.Degenerate, ShouldBeFalse)
		})

		Convey("Start and goal follow the scan order", func() {
			So(topo.Start, ShouldResemble, Pos{0, 0})
			So(topo.Goal, ShouldResemble, Pos{11, 11})
		})

		Convey("The carve opens exactly one edge less than the cell count", func() {
			So(topo.OpenEdges(), ShouldEqual, 143)
		})

		Convey("Every cell is reachable from the start", func() {
			So(len(topo.Reachable()), ShouldEqual, 144)
		})

		Convey("The outer boundary stays closed", func() {
			for i := 0; i < 12; i++ {
				So(topo.Cell(0, i).Top, ShouldBeTrue)
				So(topo.Cell(11, i).Bottom, ShouldBeTrue)
				So(topo.Cell(i, 0).Left, ShouldBeTrue)
				So(topo.Cell(i, 11).Right, ShouldBeTrue)
			}
		})

		Convey("Shared walls agree on both sides", func() {
			for r := 0; r < 12; r++ {
				for c := 0; c < 12; c++ {
					if c < 11 {
						So(topo.Cell(r, c).Right, ShouldEqual, topo.Cell(r, c+1).Left)
					}
					if r < 11 {
						So(topo.Cell(r, c).Bottom, ShouldEqual, topo.Cell(r+1, c).Top)
					}
				}
			}
		})

		Convey("Wall rectangles cover each closed wall once", func() {
			// 312 distinct walls in a 12x12 grid, 143 of them opened
			So(len(topo.WallRects(2)), ShouldEqual, 312-143)
			So(topo.BlockedRects(), ShouldBeEmpty)
		})

		Convey("Geometry derives from the screen and grid", func() {
			So(topo.CellWidth, ShouldAlmostEqual, 410.0/12)
			So(topo.CellHeight, ShouldAlmostEqual, 502.0/12)
			So(topo.BallRadius, ShouldAlmostEqual, 410.0/12/2*0.7)
		})
	})
}

func TestGenerateRoundedCorners(t *testing.T) {
	Convey("Given the default corner fraction", t, func() {
		for seed := uint64(0); seed < 20; seed++ {
			topo := newGenerator(0.20, seed).Generate()
			valid := topo.ValidCount()

			So(topo.Cell(0, 0).Valid, ShouldBeFalse)
			So(topo.Cell(0, 11).Valid, ShouldBeFalse)
			So(topo.Cell(11, 0).Valid, ShouldBeFalse)
			So(topo.Cell(11, 11).Valid, ShouldBeFalse)
			So(topo.Cell(6, 6).Valid, ShouldBeTrue)

			So(topo.Cell(topo.Start.Row, topo.Start.Col).Valid, ShouldBeTrue)
			So(topo.Cell(topo.Goal.Row, topo.Goal.Col).Valid, ShouldBeTrue)

			So(topo.OpenEdges(), ShouldEqual, valid-1)
			So(len(topo.Reachable()), ShouldEqual, valid)
			So(len(topo.BlockedRects()), ShouldEqual, 144-valid)
		}
	})

	Convey("Start is the first valid cell in row-major order", t, func() {
		topo := newGenerator(0.20, 3).Generate()
		first := -1
		for i, c := range topo.Cells() {
			if c.Valid {
				first = i
				break
			}
		}
		So(topo.Start, ShouldResemble, Pos{Row: first / 12, Col: first % 12})
	})

	Convey("Invalid cells keep all four walls", t, func() {
		topo := newGenerator(0.20, 5).Generate()
		for _, p := range topo.Blocked() {
			c := topo.Cell(p.Row, p.Col)
			So(c.Top && c.Right && c.Bottom && c.Left, ShouldBeTrue)
		}
	})
}

func TestGenerateDegenerate(t *testing.T) {
	Convey("Given a mask that excludes every cell", t, func() {
		g := &Generator{
			Rows: 1, Cols: 1, Width: 100, Height: 100,
			CornerFraction: 0.2, BallFraction: 0.7, Tolerance: 1,
		}
		topo := g.Generate()

		Convey("The centre cell is forced valid as start and goal", func() {
			So(topo.Degenerate, ShouldBeTrue)
			So(topo.Start, ShouldResemble, Pos{0, 0})
			So(topo.Goal, ShouldResemble, topo.Start)
			So(topo.ValidCount(), ShouldEqual, 1)
			So(topo.OpenEdges(), ShouldEqual, 0)
		})
	})
}

func TestCollides(t *testing.T) {
	Convey("Given a generated maze", t, func() {
		topo := newGenerator(0, 7).Generate()
		x, y := topo.Place(topo.Start)

		Convey("The object placed at the start does not collide", func() {
			So(topo.Collides(x, y), ShouldBeFalse)
		})

		Convey("Crossing the outer left wall collides", func() {
			So(topo.Collides(0.5, y), ShouldBeTrue)
		})

		Convey("Crossing the outer top wall collides", func() {
			So(topo.Collides(x, 0.5), ShouldBeTrue)
		})

		Convey("Coordinates beyond the grid clamp to edge cells", func() {
			So(topo.Collides(-50, -50), ShouldBeTrue)
			So(topo.Collides(1000, 1000), ShouldBeTrue)
		})

		Convey("Queries are pure", func() {
			before := topo.Cells()
			for i := 0; i < 100; i++ {
				px := float64(i) * 4
				py := float64(i) * 5
				first := topo.Collides(px, py)
				So(topo.Collides(px, py), ShouldEqual, first)
			}
			So(topo.Cells(), ShouldResemble, before)
		})
	})

	Convey("Given a single open cell", t, func() {
		topo := &Generator{
			Rows: 1, Cols: 1, Width: 100, Height: 100,
			BallFraction: 0.5, Tolerance: 1,
		}
		m := topo.Generate()

		Convey("Touching inside the tolerance is free", func() {
			So(m.BallSize(), ShouldEqual, 50)
			So(m.Collides(1, 1), ShouldBeFalse)
			So(m.Collides(49, 49), ShouldBeFalse)
		})

		Convey("Entering the tolerance band collides", func() {
			So(m.Collides(0.9, 10), ShouldBeTrue)
			So(m.Collides(10, 49.5), ShouldBeTrue)
		})
	})
}

func TestCellLookup(t *testing.T) {
	Convey("Given a maze", t, func() {
		topo := newGenerator(0, 11).Generate()

		Convey("CellAt clamps to the grid", func() {
			So(topo.CellAt(-10, -10), ShouldResemble, Pos{0, 0})
			So(topo.CellAt(5000, 5000), ShouldResemble, Pos{11, 11})
			So(topo.CellAt(410.0/12*3+1, 502.0/12*4+1), ShouldResemble, Pos{4, 3})
		})

		Convey("Place centres the object in its cell", func() {
			x, y := topo.Place(Pos{Row: 2, Col: 5})
			So(topo.CenterCell(x, y), ShouldResemble, Pos{Row: 2, Col: 5})
			So(x, ShouldAlmostEqual, 5*topo.CellWidth+(topo.CellWidth-topo.BallSize())/2)
		})

		Convey("The goal marker sits in the goal cell", func() {
			mx, my := topo.MarkerPosition(topo.Goal)
			So(topo.CellAt(mx, my), ShouldResemble, topo.Goal)
		})
	})
}
