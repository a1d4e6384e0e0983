// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given a config file", t, func() {
		Convey("An empty file yields the firmware defaults", func() {
			cfg, err := Parse(strings.NewReader(""))
			So(err, ShouldBeNil)
			So(cfg.TickInterval, ShouldEqual, 20)
			So(cfg.Tick(), ShouldEqual, 20*time.Millisecond)
			So(cfg.IMUI2CAddr, ShouldEqual, 0x6B)
			So(cfg.MazeRows, ShouldEqual, 12)
			So(cfg.MazeCornerFraction, ShouldEqual, 0.20)
		})

		Convey("Values, comments and hex addresses are read", func() {
			cfg, err := Parse(strings.NewReader(`
# sensor on the low address
IMU_I2C_ADDR = 0x6A
TICK_INTERVAL=10
MAZE_BOUNCE=0.25
DISPLAY_ENABLED=true
MQTT_BROKER=tcp://localhost:1883
`))
			So(err, ShouldBeNil)
			So(cfg.IMUI2CAddr, ShouldEqual, 0x6A)
			So(cfg.TickInterval, ShouldEqual, 10)
			So(cfg.MazeBounce, ShouldEqual, 0.25)
			So(cfg.DisplayEnabled, ShouldBeTrue)
			So(cfg.MQTTBroker, ShouldEqual, "tcp://localhost:1883")
		})

		Convey("Unknown keys are rejected with the line number", func() {
			_, err := Parse(strings.NewReader("\nNOT_A_KEY=1\n"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "config line 2")
			So(err.Error(), ShouldContainSubstring, "NOT_A_KEY")
		})

		Convey("Malformed lines are rejected", func() {
			_, err := Parse(strings.NewReader("TICK_INTERVAL"))
			So(err, ShouldNotBeNil)
		})

		Convey("Out of range values are rejected", func() {
			_, err := Parse(strings.NewReader("IMU_ACCEL_RANGE=4"))
			So(err, ShouldNotBeNil)

			_, err = Parse(strings.NewReader("MOUNTING_ROTATION=45"))
			So(err, ShouldNotBeNil)

			_, err = Parse(strings.NewReader("INPUT_SMOOTHING=1.5"))
			So(err, ShouldNotBeNil)
		})

		Convey("A box larger than the screen fails validation", func() {
			_, err := Parse(strings.NewReader("SCREEN_WIDTH=40\nBALL_BOX_SIZE=50"))
			So(err, ShouldNotBeNil)
		})
	})
}
