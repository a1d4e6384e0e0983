// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/physics"
)

func lit(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestDisplayPresenter(t *testing.T) {
	Convey("Given a display presenter every 5 ticks", t, func() {
		screen := &fakeScreen{}
		d := NewDisplayPresenter(screen, 410, 502, 5)

		Convey("Only every fifth frame is drawn", func() {
			for i := uint64(1); i <= 10; i++ {
				d.MoveObject(game.Frame{Tick: i, Size: 50})
			}
			So(screen.draws, ShouldEqual, 2)
		})

		Convey("A new maze is drawn at once", func() {
			d.ShowMaze(testTopology(), 1)
			So(screen.draws, ShouldEqual, 1)
			img, ok := screen.last.(*image1bit.VerticalLSB)
			So(ok, ShouldBeTrue)
			So(lit(img), ShouldBeGreaterThan, 100)
		})

		Convey("The ball is drawn where the frame puts it", func() {
			d.Calibrated(control.Calibration{Confidence: 1})
			img := d.render(&game.Frame{
				Variant: game.VariantBall,
				State:   physics.State{PosX: 200, PosY: 250},
				Size:    50,
			})
			k := d.scale()
			So(img.BitAt(int(200*k), int(250*k)), ShouldEqual, image1bit.On)
			So(img.BitAt(int(100*k), int(100*k)), ShouldEqual, image1bit.Off)
		})
	})
}
