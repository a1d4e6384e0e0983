// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package game sequences the tilt pipeline for one session: sensor read,
// conditioning, integration and, for the maze, the win check. A session
// is either clocked by its own loop goroutine (Start with a non-zero Tick)
// or by an external scheduler calling Tick directly.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/imu"
	"github.com/relabs-tech/gyro_games/internal/maze"
	"github.com/relabs-tech/gyro_games/internal/physics"
)

const (
	// debugEvery is the number of ticks between pipeline debug lines.
	debugEvery = 50
	// readErrEvery rate limits sensor failure logs.
	readErrEvery = 50
)

// ErrStarted is returned by Start on a session that already ran.
var ErrStarted = errors.New("game: session already started")

// Options configures a session.
type Options struct {
	Variant Variant
	// Tick is the loop interval. Zero leaves ticking to the caller.
	Tick time.Duration

	Conditioner control.Params
	Physics     physics.Params
	// Width and Height are the play field in pixels.
	Width  float64
	Height float64
	// BoxSize is the ball side in the open field.
	BoxSize float64

	CalibrationSamples  int
	CalibrationInterval time.Duration

	// Generator builds the levels of the maze variant.
	Generator *maze.Generator
	Presenter Presenter
}

// Session owns every piece of mutable game state.
type Session struct {
	opts       Options
	sensor     imu.AccelReader
	calibrator *control.Calibrator
	cond       *control.Conditioner
	presenter  Presenter

	mode       Mode
	paused     bool
	sensorUp   bool
	pendingCal bool
	topo       *maze.Topology
	field      physics.Field
	state      physics.State
	control    imu.AccelSample
	level      int
	ticks      uint64
	readErrors int
	lastCalib  control.Calibration
	calibrated bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	cmds    chan func()
}

// NewSession wires a session around sensor. The sensor is not opened
// until Start.
func NewSession(sensor imu.AccelReader, opts Options) *Session {
	presenter := opts.Presenter
	if presenter == nil {
		presenter = Presenters(nil)
	}
	return &Session{
		opts:       opts,
		sensor:     sensor,
		calibrator: control.NewCalibrator(sensor, opts.CalibrationSamples, opts.CalibrationInterval),
		cond:       control.NewConditioner(opts.Conditioner),
		presenter:  presenter,
		cmds:       make(chan func()),
	}
}

// Start initializes the sensor and enters the first mode: Playing for the
// ball, Menu for the maze. A sensor that fails to initialize leaves the
// session running on a zero control vector while reads keep retrying.
// With a non-zero Tick the loop goroutine is started and runs until Stop
// or ctx is done.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeIdle {
		return ErrStarted
	}
	if s.opts.Variant == VariantMaze && s.opts.Generator == nil {
		return errors.New("game: maze variant needs a generator")
	}

	if err := s.sensor.Init(); err != nil {
		log.Warnf("game: sensor not ready, running degraded: %v", err)
	} else {
		s.sensorUp = true
		s.pendingCal = true
	}

	switch s.opts.Variant {
	case VariantMaze:
		s.mode = ModeMenu
	default:
		s.field = physics.Field{Width: s.opts.Width, Height: s.opts.Height, ObjectSize: s.opts.BoxSize}
		s.state = physics.State{PosX: s.field.MaxX() / 2, PosY: s.field.MaxY() / 2}
		s.mode = ModePlaying
	}
	log.Infof("game: %s session started in %s", s.opts.Variant, s.mode)

	if s.opts.Tick <= 0 {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(loopCtx)
	return nil
}

// Stop ends the loop, aborting a calibration in progress. The sensor is
// left to its owner to close.
func (s *Session) Stop() {
	s.mu.Lock()
	running, cancel, done := s.running, s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	if running {
		cancel()
		<-done
	}
	if s.mode != ModeStopped {
		s.mode = ModeStopped
		log.Infof("game: %s session stopped after %d ticks", s.opts.Variant, s.ticks)
	}
}

// Done is closed when the loop goroutine exits. It is nil for an
// externally clocked session.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()

	for {
		s.flushCalibration(ctx)

		var tick <-chan time.Time
		if s.ticking() {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			return
		case fn := <-s.cmds:
			fn()
		case <-tick:
			s.Tick(ctx)
		}
	}
}

func (s *Session) ticking() bool {
	return s.mode == ModePlaying && !s.paused
}

// call runs fn on the goroutine that owns the state.
func (s *Session) call(fn func()) {
	s.mu.Lock()
	running, done := s.running, s.done
	s.mu.Unlock()

	if !running {
		fn()
		return
	}
	finished := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(finished) }:
		<-finished
	case <-done:
		fn()
	}
}

// Tick advances the session by one step: read, condition, integrate, and
// for the maze check the goal. It does nothing outside Playing or while
// paused, except running a pending calibration.
func (s *Session) Tick(ctx context.Context) {
	s.flushCalibration(ctx)
	if !s.ticking() {
		return
	}
	s.ticks++

	raw, err := s.sensor.ReadRaw()
	if err != nil {
		s.control = imu.AccelSample{}
		s.readErrors++
		if s.readErrors%readErrEvery == 1 {
			log.Warnf("game: sensor read failed (%d in a row): %v", s.readErrors, err)
		}
	} else {
		if s.readErrors > 0 {
			log.Infof("game: sensor recovered after %d failed reads", s.readErrors)
			s.readErrors = 0
		}
		if !s.sensorUp {
			s.sensorUp = true
			s.pendingCal = true
		}
		s.control = s.cond.Apply(raw)
	}

	switch s.opts.Variant {
	case VariantMaze:
		s.state = physics.StepMaze(s.state, s.control, s.opts.Physics, s.field, s.topo)
	default:
		s.state = physics.StepOpen(s.state, s.control, s.opts.Physics, s.field)
	}

	if s.ticks%debugEvery == 0 {
		log.Debugf("In(%.3f, %.3f) -> Vel(%.2f, %.2f) -> Pos(%.1f, %.1f)",
			s.control.X, s.control.Y, s.state.VelX, s.state.VelY, s.state.PosX, s.state.PosY)
	}

	if s.opts.Variant == VariantMaze {
		s.checkGoal()
	}
	s.presenter.MoveObject(s.frame())
}

func (s *Session) checkGoal() {
	// A degenerate maze starts on its goal and has nowhere to go.
	if s.topo.Start == s.topo.Goal {
		return
	}
	if s.topo.CenterCell(s.state.PosX, s.state.PosY) != s.topo.Goal {
		return
	}
	log.Infof("game: level %d complete after %d ticks", s.level, s.ticks)
	s.newLevel(s.level + 1)
}

// newLevel replaces the topology and puts the object at rest on the new
// start cell. The conditioner is left alone.
func (s *Session) newLevel(level int) {
	s.topo = s.opts.Generator.Generate()
	s.level = level
	s.field = physics.Field{Width: s.opts.Width, Height: s.opts.Height, ObjectSize: s.topo.BallSize()}
	x, y := s.topo.Place(s.topo.Start)
	s.state = physics.State{PosX: x, PosY: y}
	s.presenter.ShowMaze(s.topo, level)
}

func (s *Session) flushCalibration(ctx context.Context) {
	if !s.pendingCal {
		return
	}
	s.pendingCal = false
	s.calibrate(ctx)
}

// calibrate blocks the owning goroutine for the whole run, so no tick
// interleaves with it.
func (s *Session) calibrate(ctx context.Context) {
	cal, err := s.calibrator.Calibrate(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Infof("game: calibration aborted, keeping previous bias")
			return
		}
		log.Warnf("game: calibration failed, keeping previous bias: %v", err)
		return
	}
	s.cond.SetBias(cal.Bias)
	s.lastCalib = cal
	s.calibrated = true
	s.presenter.Calibrated(cal)
}

func (s *Session) frame() Frame {
	return Frame{
		Variant: s.opts.Variant,
		Mode:    s.mode,
		Tick:    s.ticks,
		Level:   s.level,
		Control: s.control,
		State:   s.state,
		Size:    s.field.ObjectSize,
	}
}

// Pause freezes the session without touching its state.
func (s *Session) Pause() {
	s.call(func() {
		if !s.paused {
			s.paused = true
			log.Debug("game: paused")
		}
	})
}

// Resume continues exactly where Pause left off.
func (s *Session) Resume() {
	s.call(func() {
		if s.paused {
			s.paused = false
			log.Debug("game: resumed")
		}
	})
}

// Back handles a back press. The maze returns from play to its menu; any
// other state asks the host to exit.
func (s *Session) Back() BackAction {
	action := BackExit
	s.call(func() {
		if s.opts.Variant == VariantMaze && s.mode == ModePlaying {
			s.mode = ModeMenu
			s.paused = false
			action = BackToMenu
		}
	})
	log.Debugf("game: back -> %s", action)
	return action
}

// SelectClassic starts the classic maze at level 1 from the menu.
func (s *Session) SelectClassic() {
	s.call(func() {
		if s.opts.Variant != VariantMaze || s.mode != ModeMenu {
			log.Debugf("game: classic ignored in %s", s.mode)
			return
		}
		s.newLevel(1)
		s.mode = ModePlaying
		s.paused = false
	})
}

// Menu lists the maze menu entries. The ball has no menu.
func (s *Session) Menu() []MenuItem {
	if s.opts.Variant != VariantMaze {
		return nil
	}
	return append([]MenuItem(nil), mazeMenu...)
}

// RequestCalibration queues a calibration run. It executes between ticks
// on the owning goroutine and returns immediately.
func (s *Session) RequestCalibration() {
	s.call(func() {
		s.pendingCal = true
	})
}

// Snapshot returns the current frame.
func (s *Session) Snapshot() Frame {
	var f Frame
	s.call(func() { f = s.frame() })
	return f
}

// Topology returns the current maze, nil outside the maze variant or
// before the first level.
func (s *Session) Topology() *maze.Topology {
	var t *maze.Topology
	s.call(func() { t = s.topo })
	return t
}

// Calibration returns the last successful calibration.
func (s *Session) Calibration() (control.Calibration, bool) {
	var (
		c  control.Calibration
		ok bool
	)
	s.call(func() { c, ok = s.lastCalib, s.calibrated })
	return c, ok
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	var p bool
	s.call(func() { p = s.paused })
	return p
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	var m Mode
	s.call(func() { m = s.mode })
	return m
}

// SetState overrides the kinematic state, for tools and tests.
func (s *Session) SetState(st physics.State) {
	s.call(func() { s.state = st })
}
