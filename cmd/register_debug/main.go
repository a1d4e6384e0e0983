// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/app"
	"github.com/relabs-tech/gyro_games/internal/config"
	"github.com/relabs-tech/gyro_games/internal/sensors"
)

func main() {
	configPath := flag.String("config", "gyro_config.txt", "path to configuration file")
	port := flag.Int("serve", 0, "serve the register socket on this port instead of dumping once")
	flag.Parse()

	log.Println("starting QMI8658 register debug tool (standalone)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	open := func() (sensors.RegisterTransport, error) {
		return sensors.OpenI2C(cfg.I2CBus, cfg.IMUI2CAddr)
	}

	if *port == 0 {
		tr, err := open()
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		defer tr.Close()

		values, err := sensors.DumpRegisters(tr)
		for _, v := range values {
			fmt.Printf("0x%02X  %-12s 0x%02X  %08b  %s\n", v.Address, v.Name, v.Value, v.Value, v.Description)
		}
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		app.HandleRegisterDebugWS(w, r, open)
	})
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Register debug tool listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
