// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package desktop runs a session in an ebiten window. Ebiten's fixed
// update rate is the tick source.
package desktop

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/maze"
	"github.com/relabs-tech/gyro_games/internal/sim"
)

var (
	colorBackground = color.RGBA{0x10, 0x10, 0x18, 0xff}
	colorWall       = color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	colorBlock      = color.RGBA{0x40, 0x40, 0x50, 0xff}
	colorGoal       = color.RGBA{0x30, 0xc0, 0x50, 0xff}
	colorBall       = color.RGBA{0xf0, 0x80, 0x20, 0xff}
)

// Window is the ebiten game driving a session. It is also the session's
// presenter.
type Window struct {
	session *game.Session
	keys    *sim.KeyboardSource
	ctx     context.Context
	width   int
	height  int

	mu    sync.Mutex
	frame game.Frame
	topo  *maze.Topology
	level int
	cal   *control.Calibration
}

func NewWindow(ctx context.Context, keys *sim.KeyboardSource, width, height int) *Window {
	return &Window{ctx: ctx, keys: keys, width: width, height: height}
}

// Attach binds the session the window drives.
func (w *Window) Attach(s *game.Session) { w.session = s }

func (w *Window) MoveObject(f game.Frame) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame = f
}

func (w *Window) ShowMaze(topo *maze.Topology, level int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.topo, w.level = topo, level
}

func (w *Window) Calibrated(cal control.Calibration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cal = &cal
}

// Update is one tick: keys first, then the session.
func (w *Window) Update() error {
	w.keys.Update(sim.Input{
		Left:  ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right: ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Up:    ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:  ebiten.IsKeyPressed(ebiten.KeyArrowDown),
	})

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		w.session.RequestCalibration()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if w.session.Paused() {
			w.session.Resume()
		} else {
			w.session.Pause()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		w.session.SelectClassic()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		if w.session.Back() == game.BackExit {
			return ebiten.Termination
		}
	}

	w.session.Tick(w.ctx)
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()

	screen.Fill(colorBackground)

	if w.session.Mode() == game.ModeMenu {
		w.drawMenu(screen)
		return
	}

	if w.frame.Variant == game.VariantMaze && w.topo != nil {
		for _, r := range w.topo.BlockedRects() {
			fill(screen, r, colorBlock)
		}
		mx, my := w.topo.MarkerPosition(w.topo.Goal)
		fill(screen, maze.Rect{X: mx - 4, Y: my - 4, W: 8, H: 8}, colorGoal)
		for _, r := range w.topo.WallRects(2) {
			fill(screen, r, colorWall)
		}
	}

	st := w.frame.State
	fill(screen, maze.Rect{X: st.PosX, Y: st.PosY, W: w.frame.Size, H: w.frame.Size}, colorBall)

	status := fmt.Sprintf("tick %d  level %d  ctl %+.2f %+.2f", w.frame.Tick, w.level, w.frame.Control.X, w.frame.Control.Y)
	if w.cal != nil {
		status += fmt.Sprintf("  cal %.0f%%", w.cal.Confidence*100)
	}
	if w.session.Paused() {
		status += "  PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, status, 4, w.height-16)
}

func (w *Window) drawMenu(screen *ebiten.Image) {
	y := w.height/2 - 20
	for _, item := range w.session.Menu() {
		label := item.Label
		if !item.Enabled {
			label += " (soon)"
		}
		ebitenutil.DebugPrintAt(screen, label, w.width/2-40, y)
		y += 20
	}
	ebitenutil.DebugPrintAt(screen, "Enter: play  Esc: exit  C: calibrate", 4, w.height-16)
}

func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}

func fill(screen *ebiten.Image, r maze.Rect, c color.Color) {
	rect := image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
	screen.SubImage(rect).(*ebiten.Image).Fill(c)
}

// Run opens the window and blocks until it is closed.
func Run(ctx context.Context, opts game.Options, tps int, extra ...game.Presenter) error {
	keys := sim.NewKeyboardSource(opts.Physics.Mounting)
	win := NewWindow(ctx, keys, int(opts.Width), int(opts.Height))

	opts.Tick = 0
	opts.Presenter = append(game.Presenters{win}, extra...)
	session := game.NewSession(keys, opts)
	win.Attach(session)

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	ebiten.SetTPS(tps)
	ebiten.SetWindowSize(win.width, win.height)
	ebiten.SetWindowTitle(fmt.Sprintf("gyro %s", opts.Variant))
	log.Infof("simulator: %dx%d at %d TPS", win.width, win.height, tps)

	return ebiten.RunGame(win)
}
