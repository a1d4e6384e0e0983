// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/app"
	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/game"
)

func main() {
	configPath := flag.String("config", "./gyro_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "use the synthetic tilt source instead of the QMI8658")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := app.SetupLogging(cfg.LogLevel); err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(cfg, game.VariantBall, app.RunOptions{Mock: *mock}); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
