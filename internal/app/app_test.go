// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/imu"
	"github.com/relabs-tech/gyro_games/internal/physics"
)

func TestDispatch(t *testing.T) {
	Convey("Given a controller", t, func() {
		ctrl := &fakeController{backWith: game.BackToMenu}

		Convey("Known commands reach it", func() {
			for _, cmd := range []string{"calibrate", "pause", "resume", "classic"} {
				res, err := Dispatch(ctrl, cmd)
				So(err, ShouldBeNil)
				So(res, ShouldEqual, cmd)
			}
			So(ctrl.Calls(), ShouldResemble, []string{"calibrate", "pause", "resume", "classic"})
		})

		Convey("Back answers with the action taken", func() {
			res, err := Dispatch(ctrl, " BACK\n")
			So(err, ShouldBeNil)
			So(res, ShouldEqual, "menu")
		})

		Convey("Unknown commands are rejected", func() {
			_, err := Dispatch(ctrl, "jump")
			So(err, ShouldNotBeNil)
			So(ctrl.Calls(), ShouldBeEmpty)
		})
	})
}

func TestTelemetryPresenter(t *testing.T) {
	Convey("Given a telemetry presenter every 5 ticks", t, func() {
		client := &fakeMQTT{}
		topics := Topics{State: "s", Maze: "m", Events: "e", Command: "c"}
		p := NewTelemetryPresenter(client, topics, 5)

		Convey("Frames are decimated", func() {
			for i := uint64(1); i <= 10; i++ {
				p.MoveObject(game.Frame{Tick: i})
			}
			So(len(client.sent), ShouldEqual, 2)
			So(client.sent[0].topic, ShouldEqual, "s")

			var f game.Frame
			So(json.Unmarshal(client.sent[1].payload, &f), ShouldBeNil)
			So(f.Tick, ShouldEqual, 10)
		})

		Convey("A new maze is retained and announced", func() {
			topo := testTopology()
			p.ShowMaze(topo, 3)
			So(len(client.sent), ShouldEqual, 2)
			So(client.sent[0].topic, ShouldEqual, "m")
			So(client.sent[0].retained, ShouldBeTrue)

			var l MazeLayout
			So(json.Unmarshal(client.sent[0].payload, &l), ShouldBeNil)
			So(l.Level, ShouldEqual, 3)
			So(l.Start, ShouldResemble, topo.Start)
			So(len(l.Walls), ShouldEqual, len(topo.WallRects(WallThickness)))

			var ev Event
			So(json.Unmarshal(client.sent[1].payload, &ev), ShouldBeNil)
			So(ev.Type, ShouldEqual, "level")
			So(ev.Level, ShouldEqual, 3)
		})

		Convey("Calibrations become events", func() {
			p.Calibrated(control.Calibration{Bias: control.Bias{X: 0.01}, Confidence: 1})
			var ev Event
			So(json.Unmarshal(client.sent[0].payload, &ev), ShouldBeNil)
			So(ev.Type, ShouldEqual, "calibrated")
			So(ev.Calibration.Bias.X, ShouldEqual, 0.01)
		})
	})
}

func TestFrameJSON(t *testing.T) {
	Convey("Frames survive the wire", t, func() {
		in := game.Frame{
			Variant: game.VariantMaze,
			Mode:    game.ModePlaying,
			Tick:    42,
			Level:   2,
			Control: imu.AccelSample{X: 0.1},
			State:   physics.State{PosX: 10, PosY: 20, VelX: 1},
			Size:    24,
		}
		b, err := json.Marshal(in)
		So(err, ShouldBeNil)
		So(string(b), ShouldContainSubstring, `"variant":"maze"`)
		So(string(b), ShouldContainSubstring, `"mode":"playing"`)

		var out game.Frame
		So(json.Unmarshal(b, &out), ShouldBeNil)
		So(out, ShouldResemble, in)
	})
}

func TestConsolePresenter(t *testing.T) {
	Convey("Given a console presenter", t, func() {
		var buf bytes.Buffer
		p := NewConsolePresenter(&buf, 2)

		p.MoveObject(game.Frame{Tick: 1})
		p.MoveObject(game.Frame{Tick: 2, Variant: game.VariantBall})
		p.ShowMaze(testTopology(), 1)
		p.Calibrated(control.Calibration{Samples: 100, Confidence: 1})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		So(lines, ShouldHaveLength, 3)
		So(lines[0], ShouldStartWith, "[ball ] tick=     2")
		So(lines[1], ShouldStartWith, "[MAZE ] level=1 12x12")
		So(lines[2], ShouldContainSubstring, "samples=100")
	})
}

func TestSessionOptions(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.Default()

		Convey("The ball uses the open field constants", func() {
			opts := SessionOptions(cfg, game.VariantBall)
			So(opts.Physics.Bounce, ShouldEqual, 0.5)
			So(opts.Physics.MaxVel, ShouldEqual, 30)
			So(opts.Physics.Mounting, ShouldEqual, physics.Mounting(90))
			So(opts.CalibrationSamples, ShouldEqual, 200)
			So(opts.BoxSize, ShouldEqual, 50)
			So(opts.Generator, ShouldBeNil)
		})

		Convey("The maze uses its own constants and a generator", func() {
			opts := SessionOptions(cfg, game.VariantMaze)
			So(opts.Physics.Bounce, ShouldEqual, 0.3)
			So(opts.Physics.MaxVel, ShouldEqual, 15)
			So(opts.CalibrationSamples, ShouldEqual, 100)
			So(opts.Generator, ShouldNotBeNil)
			So(opts.Generator.Rows, ShouldEqual, 12)
			So(opts.Generator.BallFraction, ShouldEqual, 0.7)
			So(opts.Tick.Milliseconds(), ShouldEqual, 20)
		})
	})
}
