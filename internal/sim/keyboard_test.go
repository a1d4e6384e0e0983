// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sim

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/relabs-tech/gyro_games/internal/physics"
)

func TestKeyboardSource(t *testing.T) {
	for _, m := range []physics.Mounting{0, 90, 180, 270} {
		Convey("Given a keyboard source mounted at "+string(rune('0'+int(m)/90))+" quarter turns", t, func() {
			k := NewKeyboardSource(m)
			So(k.Init(), ShouldBeNil)

			Convey("Holding right pushes the object right after mounting", func() {
				for i := 0; i < 5; i++ {
					k.Update(Input{Right: true})
				}
				s, err := k.ReadRaw()
				So(err, ShouldBeNil)
				fx, fy := m.Force(s)
				So(fx, ShouldAlmostEqual, 0.1)
				So(fy, ShouldAlmostEqual, 0)
				So(s.Z, ShouldEqual, 1)
			})

			Convey("Holding down pushes the object down", func() {
				k.Update(Input{Down: true})
				s, _ := k.ReadRaw()
				fx, fy := m.Force(s)
				So(fx, ShouldAlmostEqual, 0)
				So(fy, ShouldAlmostEqual, 0.02)
			})
		})
	}

	Convey("Given a tilted source", t, func() {
		k := NewKeyboardSource(90)
		for i := 0; i < 100; i++ {
			k.Update(Input{Left: true, Up: true})
		}

		Convey("The tilt saturates", func() {
			fx, fy := k.Tilt()
			So(fx, ShouldEqual, -tiltMax)
			So(fy, ShouldEqual, -tiltMax)
		})

		Convey("Releasing the keys settles to exactly level", func() {
			for i := 0; i < 100; i++ {
				k.Update(Input{})
			}
			fx, fy := k.Tilt()
			So(fx, ShouldEqual, 0)
			So(fy, ShouldEqual, 0)
		})

		Convey("Opposite keys cancel into decay", func() {
			before, _ := k.Tilt()
			k.Update(Input{Left: true, Right: true})
			after, _ := k.Tilt()
			So(after, ShouldAlmostEqual, before*tiltDecay)
		})
	})
}
