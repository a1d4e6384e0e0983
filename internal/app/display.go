// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/maze"
)

const (
	displayWidth  = 128
	displayHeight = 64
)

// Screen is a 1-bit display.
type Screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// OLED is an SSD1306 on its own I2C bus handle.
type OLED struct {
	*ssd1306.Dev
	bus i2c.BusCloser
}

// OpenOLED initializes an SSD1306 at the default address on busName.
func OpenOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph")
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open I2C bus")
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, errors.Wrap(err, "failed to initialize display")
	}
	log.Printf("display: initialized on bus %q", busName)
	return &OLED{Dev: dev, bus: bus}, nil
}

func (o *OLED) Close() error {
	if err := o.Dev.Halt(); err != nil {
		log.Printf("display: halt error: %v", err)
	}
	return o.bus.Close()
}

// DisplayPresenter renders the play field on a 128x64 screen every
// interval ticks, scaled to the screen height, with the status to its right.
type DisplayPresenter struct {
	screen   Screen
	interval uint64
	field    image.Point // play field size in pixels

	mu         sync.Mutex
	topo       *maze.Topology
	level      int
	confidence float64
	calibrated bool
}

func NewDisplayPresenter(screen Screen, width, height float64, interval int) *DisplayPresenter {
	if interval < 1 {
		interval = 1
	}
	return &DisplayPresenter{
		screen:   screen,
		interval: uint64(interval),
		field:    image.Pt(int(width), int(height)),
	}
}

// Splash shows the title screen.
func (d *DisplayPresenter) Splash(title string) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawText(img, 10, 26, title)
	drawText(img, 10, 43, "Tilt to play")
	return d.screen.Draw(d.screen.Bounds(), img, image.Point{})
}

func (d *DisplayPresenter) MoveObject(f game.Frame) {
	if f.Tick%d.interval != 0 {
		return
	}
	d.mu.Lock()
	img := d.render(&f)
	d.mu.Unlock()
	if err := d.screen.Draw(d.screen.Bounds(), img, image.Point{}); err != nil {
		log.Printf("display: error updating display: %v", err)
	}
}

func (d *DisplayPresenter) ShowMaze(topo *maze.Topology, level int) {
	d.mu.Lock()
	d.topo, d.level = topo, level
	img := d.render(nil)
	d.mu.Unlock()
	if err := d.screen.Draw(d.screen.Bounds(), img, image.Point{}); err != nil {
		log.Printf("display: error updating display: %v", err)
	}
}

func (d *DisplayPresenter) Calibrated(cal control.Calibration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confidence, d.calibrated = cal.Confidence, true
}

// scale maps play field pixels to screen pixels.
func (d *DisplayPresenter) scale() float64 {
	return math.Min(float64(displayWidth)/float64(d.field.X), float64(displayHeight)/float64(d.field.Y))
}

// render draws the current scene. A nil frame draws the maze without the
// object.
func (d *DisplayPresenter) render(f *game.Frame) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	k := d.scale()
	fw := int(math.Ceil(float64(d.field.X) * k))
	fh := int(math.Ceil(float64(d.field.Y) * k))

	isMaze := d.topo != nil && (f == nil || f.Variant == game.VariantMaze)
	if isMaze {
		for _, r := range d.topo.BlockedRects() {
			fillRect(img, r, k)
		}
		for _, r := range d.topo.WallRects(WallThickness) {
			fillRect(img, r, k)
		}
		mx, my := d.topo.MarkerPosition(d.topo.Goal)
		img.SetBit(int(mx*k), int(my*k), image1bit.On)
	} else {
		strokeRect(img, 0, 0, fw-1, fh-1)
	}

	if f != nil {
		x0 := int(f.State.PosX * k)
		y0 := int(f.State.PosY * k)
		size := int(math.Max(2, math.Round(f.Size*k)))
		if isMaze {
			fillRect(img, maze.Rect{X: f.State.PosX, Y: f.State.PosY, W: f.Size, H: f.Size}, k)
		} else {
			strokeRect(img, x0, y0, x0+size-1, y0+size-1)
		}
	}

	tx := fw + 4
	if isMaze {
		drawText(img, tx, 13, fmt.Sprintf("L%d", d.level))
	} else {
		drawText(img, tx, 13, "Ball")
	}
	if d.calibrated {
		drawText(img, tx, 39, fmt.Sprintf("C%.0f%%", d.confidence*100))
	} else {
		drawText(img, tx, 39, "C--")
	}
	if f != nil {
		drawText(img, tx, 52, fmt.Sprintf("%+.1f", f.Control.X))
	}
	return img
}

func drawText(img *image1bit.VerticalLSB, x, y int, s string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(s)
}

func fillRect(img *image1bit.VerticalLSB, r maze.Rect, k float64) {
	x0 := int(math.Floor(r.X * k))
	y0 := int(math.Floor(r.Y * k))
	x1 := int(math.Ceil((r.X + r.W) * k))
	y1 := int(math.Ceil((r.Y + r.H) * k))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetBit(x, y, image1bit.On)
		}
	}
}

func strokeRect(img *image1bit.VerticalLSB, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		img.SetBit(x, y0, image1bit.On)
		img.SetBit(x, y1, image1bit.On)
	}
	for y := y0; y <= y1; y++ {
		img.SetBit(x0, y, image1bit.On)
		img.SetBit(x1, y, image1bit.On)
	}
}
