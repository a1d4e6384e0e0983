// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/maze"
)

// ConnectMQTT dials the configured broker.
func ConnectMQTT(cfg *config.Config, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "MQTT connect to %s", cfg.MQTTBroker)
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)
	return client, nil
}

// TelemetryPresenter publishes session output to MQTT. Frames go out every
// interval ticks; mazes are retained so late subscribers get the level.
type TelemetryPresenter struct {
	client   mqtt.Client
	topics   Topics
	interval uint64
}

// Topics names the MQTT topics of a session.
type Topics struct {
	State   string
	Maze    string
	Events  string
	Command string
}

// TopicsFromConfig reads the topic keys.
func TopicsFromConfig(cfg *config.Config) Topics {
	return Topics{
		State:   cfg.TopicState,
		Maze:    cfg.TopicMaze,
		Events:  cfg.TopicEvents,
		Command: cfg.TopicCommand,
	}
}

func NewTelemetryPresenter(client mqtt.Client, topics Topics, interval int) *TelemetryPresenter {
	if interval < 1 {
		interval = 1
	}
	return &TelemetryPresenter{client: client, topics: topics, interval: uint64(interval)}
}

func (t *TelemetryPresenter) MoveObject(f game.Frame) {
	if f.Tick%t.interval != 0 {
		return
	}
	t.publish(t.topics.State, false, f)
}

func (t *TelemetryPresenter) ShowMaze(topo *maze.Topology, level int) {
	t.publish(t.topics.Maze, true, NewMazeLayout(topo, level))
	t.publish(t.topics.Events, false, Event{Type: "level", Level: level, Time: time.Now()})
}

func (t *TelemetryPresenter) Calibrated(cal control.Calibration) {
	t.publish(t.topics.Events, false, Event{Type: "calibrated", Calibration: &cal, Time: time.Now()})
}

// publish does not wait on the token; the loop goroutine must not stall on
// the broker.
func (t *TelemetryPresenter) publish(topic string, retained bool, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("json marshal error (%s): %v", topic, err)
		return
	}
	t.client.Publish(topic, 0, retained, payload)
}

// SubscribeCommands routes plain-text commands on topic to ctrl.
func SubscribeCommands(client mqtt.Client, topic string, ctrl Controller) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if _, err := Dispatch(ctrl, string(msg.Payload())); err != nil {
			log.Warnf("MQTT command on %s: %v", msg.Topic(), err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe %s", topic)
	}
	log.Printf("subscribed to MQTT topic %s", topic)
	return nil
}
