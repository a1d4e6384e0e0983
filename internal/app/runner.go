// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/imu"
	"github.com/relabs-tech/gyro_games/internal/maze"
	"github.com/relabs-tech/gyro_games/internal/physics"
	"github.com/relabs-tech/gyro_games/internal/sensors"
)

// Ball variant calibration uses twice the maze sample count.
const ballCalibrationFactor = 2

// SessionOptions maps the configuration onto a session of the variant.
func SessionOptions(cfg *config.Config, variant game.Variant) game.Options {
	opts := game.Options{
		Variant: variant,
		Tick:    cfg.Tick(),
		Conditioner: control.Params{
			Alpha:    cfg.InputSmoothing,
			Deadzone: cfg.CalibrationDeadzone,
		},
		Physics: physics.Params{
			AccelFactor: cfg.PhysicsAccelFactor,
			Friction:    cfg.PhysicsFriction,
			Mounting:    physics.Mounting(cfg.MountingRotation),
		},
		Width:               float64(cfg.ScreenWidth),
		Height:              float64(cfg.ScreenHeight),
		BoxSize:             float64(cfg.BallBoxSize),
		CalibrationSamples:  cfg.CalibrationSamples,
		CalibrationInterval: cfg.CalibrationSpacing(),
	}

	switch variant {
	case game.VariantMaze:
		opts.Physics.Bounce = cfg.MazeBounce
		opts.Physics.MaxVel = cfg.MazeMaxVel
		opts.Generator = &maze.Generator{
			Rows:           cfg.MazeRows,
			Cols:           cfg.MazeCols,
			Width:          float64(cfg.ScreenWidth),
			Height:         float64(cfg.ScreenHeight),
			CornerFraction: cfg.MazeCornerFraction,
			BallFraction:   cfg.MazeBallFraction,
			Tolerance:      cfg.MazeWallTolerance,
			Rand:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		}
	default:
		opts.Physics.Bounce = cfg.BallBounce
		opts.Physics.MaxVel = cfg.BallMaxVel
		opts.CalibrationSamples *= ballCalibrationFactor
	}
	return opts
}

// exitOnBack turns a remote back press that leaves the app into a
// shutdown request.
type exitOnBack struct {
	*game.Session
	exit context.CancelFunc
}

func (e exitOnBack) Back() game.BackAction {
	action := e.Session.Back()
	if action == game.BackExit {
		log.Println("back pressed outside play, shutting down")
		e.exit()
	}
	return action
}

// RunOptions selects the sensor and local output of Run.
type RunOptions struct {
	// Mock replaces the QMI8658 with the synthetic tilt source.
	Mock bool
	// Console prints frames to stdout.
	Console bool
}

// Run drives a session of the variant until SIGINT/SIGTERM or a remote
// back press exits. The maze skips its menu and starts the classic game.
func Run(cfg *config.Config, variant game.Variant, ro RunOptions) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if ro.Mock {
		log.Printf("starting gyro %s on the mock source", variant)
		return runSession(ctx, cancel, cfg, variant, ro, sensors.NewMockSource(), nil)
	}

	log.Printf("starting gyro %s", variant)
	if err := sensors.InitHost(); err != nil {
		return err
	}
	sensor := sensors.NewQMI8658I2C("main", cfg.I2CBus, cfg.IMUI2CAddr, sensors.QMI8658Opts{
		AccelRange: cfg.IMUAccelRange,
		AccelODR:   cfg.IMUAccelODR,
	})
	defer sensor.Close()

	return runSession(ctx, cancel, cfg, variant, ro, sensor, func() (sensors.RegisterTransport, error) {
		return sensors.OpenI2C(cfg.I2CBus, cfg.IMUI2CAddr)
	})
}

func runSession(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, variant game.Variant,
	ro RunOptions, sensor imu.AccelReader, registers RegisterOpener) error {

	var presenters game.Presenters
	if ro.Console {
		presenters = append(presenters, NewConsolePresenter(os.Stdout, cfg.TelemetryInterval))
	}

	var client mqtt.Client
	if cfg.MQTTBroker != "" {
		c, err := ConnectMQTT(cfg, cfg.MQTTClientID)
		if err != nil {
			return err
		}
		defer c.Disconnect(250)
		client = c
		presenters = append(presenters, NewTelemetryPresenter(client, TopicsFromConfig(cfg), cfg.TelemetryInterval))
	}

	var web *WebServer
	if cfg.WebServerPort > 0 {
		web = NewWebServer(nil, cfg.TelemetryInterval)
		web.OpenRegisters = registers
		presenters = append(presenters, web)
	}

	if cfg.DisplayEnabled {
		oled, err := OpenOLED(cfg.DisplayI2CBus)
		if err != nil {
			log.Warnf("display disabled: %v", err)
		} else {
			defer oled.Close()
			display := NewDisplayPresenter(oled, float64(cfg.ScreenWidth), float64(cfg.ScreenHeight), cfg.DisplayUpdateInterval)
			if err := display.Splash("Gyro " + variant.String()); err != nil {
				log.Printf("display: error showing splash: %v", err)
			}
			presenters = append(presenters, display)
		}
	}

	opts := SessionOptions(cfg, variant)
	opts.Presenter = presenters
	session := game.NewSession(sensor, opts)
	ctrl := exitOnBack{Session: session, exit: cancel}

	if client != nil {
		if err := SubscribeCommands(client, cfg.TopicCommand, ctrl); err != nil {
			return err
		}
	}
	if web != nil {
		web.ctrl = ctrl
		go func() {
			if err := web.ListenAndServe(ctx, cfg.WebServerPort); err != nil {
				log.Errorf("%v", err)
				cancel()
			}
		}()
	}

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	if variant == game.VariantMaze {
		session.SelectClassic()
	}

	select {
	case <-ctx.Done():
	case <-session.Done():
	}
	log.Println("shutting down")
	return nil
}
