// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"image"
	"math/rand/v2"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/maze"
)

type fakeController struct {
	mu       sync.Mutex
	calls    []string
	backWith game.BackAction
}

func (f *fakeController) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) RequestCalibration() { f.record("calibrate") }
func (f *fakeController) Pause()              { f.record("pause") }
func (f *fakeController) Resume()             { f.record("resume") }
func (f *fakeController) SelectClassic()      { f.record("classic") }
func (f *fakeController) Back() game.BackAction {
	f.record("back")
	return f.backWith
}

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// fakeMQTT records publishes. Methods not overridden panic through the
// nil embedded interface.
type fakeMQTT struct {
	mqtt.Client
	mu   sync.Mutex
	sent []published
}

func (f *fakeMQTT) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return doneToken{}
}

type fakeScreen struct {
	draws int
	last  image.Image
}

func (s *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (s *fakeScreen) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	s.draws++
	s.last = src
	return nil
}

func testTopology() *maze.Topology {
	g := &maze.Generator{
		Rows: 12, Cols: 12, Width: 410, Height: 502,
		CornerFraction: 0.2, BallFraction: 0.7, Tolerance: 1,
		Rand: rand.New(rand.NewPCG(9, 9)),
	}
	return g.Generate()
}
