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

	log.Println("starting gyro games (mock console)")
	if err := app.Run(cfg, variant, app.RunOptions{Mock: true, Console: true}); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
