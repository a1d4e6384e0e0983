// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/relabs-tech/gyro_games/internal/imu"
)

func TestCondition(t *testing.T) {
	Convey("Given the conditioner", t, func() {
		p := Params{Alpha: 0.3, Deadzone: 0.015}

		Convey("A zero sample with zero bias stays at zero", func() {
			out, st := Condition(imu.AccelSample{}, Bias{}, true, FilterState{}, p)
			So(out.X, ShouldEqual, 0)
			So(out.Y, ShouldEqual, 0)
			So(st, ShouldResemble, FilterState{})
		})

		Convey("A constant input converges monotonically toward c - bias", func() {
			const c, b = 0.4, 0.1
			target := c - b
			noDZ := Params{Alpha: 0.3}
			st := FilterState{}
			prevErr := math.Abs(st.X - target)
			initErr := prevErr
			for n := 1; n <= 30; n++ {
				_, st = Condition(imu.AccelSample{X: c, Y: c}, Bias{X: b, Y: b}, true, st, noDZ)
				e := math.Abs(st.X - target)
				So(e, ShouldBeLessThan, prevErr)
				So(e, ShouldBeLessThanOrEqualTo, initErr*math.Pow(1-noDZ.Alpha, float64(n))+1e-12)
				So(st.Y, ShouldEqual, st.X)
				prevErr = e
			}
		})

		Convey("Values inside the deadzone snap to exactly zero", func() {
			out, st := Condition(imu.AccelSample{X: 0.04, Y: -0.04}, Bias{}, true, FilterState{}, p)
			// 0.3 * 0.04 = 0.012 < 0.015
			So(out.X, ShouldEqual, 0)
			So(out.Y, ShouldEqual, 0)

			Convey("and re-feeding zero keeps them at zero", func() {
				out, st = Condition(imu.AccelSample{}, Bias{}, true, st, p)
				So(out.X, ShouldEqual, 0)
				So(st.X, ShouldEqual, 0)
			})
		})

		Convey("Values outside the deadzone pass through", func() {
			out, _ := Condition(imu.AccelSample{X: 0.1}, Bias{}, true, FilterState{}, p)
			So(out.X, ShouldAlmostEqual, 0.03, 1e-12)
		})

		Convey("The bias is ignored until calibration completed", func() {
			out, _ := Condition(imu.AccelSample{X: 0.1}, Bias{X: 0.1}, false, FilterState{}, p)
			So(out.X, ShouldAlmostEqual, 0.03, 1e-12)

			out, _ = Condition(imu.AccelSample{X: 0.1}, Bias{X: 0.1}, true, FilterState{}, p)
			So(out.X, ShouldEqual, 0)
		})
	})
}

func TestConditioner(t *testing.T) {
	Convey("SetBias resets the filter state", t, func() {
		c := NewConditioner(Params{Alpha: 0.5})
		c.Apply(imu.AccelSample{X: 1, Y: 1})
		So(c.State().X, ShouldEqual, 0.5)

		c.SetBias(Bias{X: 0.2, Y: -0.2})
		So(c.State(), ShouldResemble, FilterState{})
		b, ok := c.Bias()
		So(ok, ShouldBeTrue)
		So(b, ShouldResemble, Bias{X: 0.2, Y: -0.2})

		out := c.Apply(imu.AccelSample{X: 0.2, Y: -0.2})
		So(out.X, ShouldEqual, 0)
		So(out.Y, ShouldEqual, 0)
	})
}
