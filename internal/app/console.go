// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/maze"
)

// ConsolePresenter prints one line per interval ticks.
type ConsolePresenter struct {
	w        io.Writer
	interval uint64
}

func NewConsolePresenter(w io.Writer, interval int) *ConsolePresenter {
	if interval < 1 {
		interval = 1
	}
	return &ConsolePresenter{w: w, interval: uint64(interval)}
}

func (c *ConsolePresenter) MoveObject(f game.Frame) {
	if f.Tick%c.interval != 0 {
		return
	}
	printFrame(c.w, f)
}

func (c *ConsolePresenter) ShowMaze(topo *maze.Topology, level int) {
	printLayout(c.w, NewMazeLayout(topo, level))
}

func (c *ConsolePresenter) Calibrated(cal control.Calibration) {
	printCalibration(c.w, cal)
}

func printFrame(w io.Writer, f game.Frame) {
	fmt.Fprintf(w,
		"[%-5s] tick=%6d L%-2d ctl=(%+.3f,%+.3f) vel=(%+6.2f,%+6.2f) pos=(%6.1f,%6.1f)\n",
		f.Variant, f.Tick, f.Level, f.Control.X, f.Control.Y,
		f.State.VelX, f.State.VelY, f.State.PosX, f.State.PosY,
	)
}

func printLayout(w io.Writer, l MazeLayout) {
	fmt.Fprintf(w, "[MAZE ] level=%d %dx%d start=(%d,%d) goal=(%d,%d) walls=%d blocks=%d\n",
		l.Level, l.Rows, l.Cols, l.Start.Row, l.Start.Col, l.Goal.Row, l.Goal.Col, len(l.Walls), len(l.Blocks))
}

func printCalibration(w io.Writer, cal control.Calibration) {
	fmt.Fprintf(w, "[CAL  ] bias=(%+.4f,%+.4f) std=(%.4f,%.4f) confidence=%.2f samples=%d failed=%d\n",
		cal.Bias.X, cal.Bias.Y, cal.StdDev.X, cal.StdDev.Y, cal.Confidence, cal.Samples, cal.Failed)
}

// RunConsoleMQTT prints the telemetry of a running session until Ctrl+C.
func RunConsoleMQTT(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("console: MQTT_BROKER is not set")
	}
	client, err := ConnectMQTT(cfg, cfg.MQTTClientID+"-console")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	subs := map[string]mqtt.MessageHandler{
		cfg.TopicState: func(_ mqtt.Client, msg mqtt.Message) {
			var f game.Frame
			if err := json.Unmarshal(msg.Payload(), &f); err != nil {
				log.Printf("console: state unmarshal error: %v", err)
				return
			}
			printFrame(os.Stdout, f)
		},
		cfg.TopicMaze: func(_ mqtt.Client, msg mqtt.Message) {
			var l MazeLayout
			if err := json.Unmarshal(msg.Payload(), &l); err != nil {
				log.Printf("console: maze unmarshal error: %v", err)
				return
			}
			printLayout(os.Stdout, l)
		},
		cfg.TopicEvents: func(_ mqtt.Client, msg mqtt.Message) {
			var ev Event
			if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
				log.Printf("console: event unmarshal error: %v", err)
				return
			}
			if ev.Calibration != nil {
				printCalibration(os.Stdout, *ev.Calibration)
				return
			}
			fmt.Printf("[EVENT] %s level=%d at %s\n", ev.Type, ev.Level, ev.Time.Format("15:04:05"))
		},
	}

	for topic, handler := range subs {
		token := client.Subscribe(topic, 0, handler)
		token.Wait()
		if token.Error() != nil {
			return errors.Wrapf(token.Error(), "subscribe %s", topic)
		}
		log.Printf("console: subscribed to %s", topic)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	return nil
}
