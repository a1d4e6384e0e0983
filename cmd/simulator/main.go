// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/app"
	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/sim/desktop"
)

func main() {
	configPath := flag.String("config", "", "optional configuration file")
	variantName := flag.String("variant", "maze", "ball or maze")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if err := app.SetupLogging(cfg.LogLevel); err != nil {
		log.Fatalf("%v", err)
	}

	variant, err := game.ParseVariant(*variantName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var extra []game.Presenter
	if cfg.MQTTBroker != "" {
		client, err := app.ConnectMQTT(cfg, cfg.MQTTClientID+"-sim")
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		defer client.Disconnect(250)
		extra = append(extra, app.NewTelemetryPresenter(client, app.TopicsFromConfig(cfg), cfg.TelemetryInterval))
	}

	tps := 1000 / cfg.TickInterval
	if err := desktop.Run(context.Background(), app.SessionOptions(cfg, variant), tps, extra...); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
