// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/game"
)

// Controller is the part of a session remote clients may drive.
type Controller interface {
	RequestCalibration()
	Pause()
	Resume()
	Back() game.BackAction
	SelectClassic()
}

// Command names accepted over MQTT and the web socket.
const (
	CmdCalibrate = "calibrate"
	CmdPause     = "pause"
	CmdResume    = "resume"
	CmdBack      = "back"
	CmdClassic   = "classic"
)

// Dispatch applies one named command. Back answers with the action the
// session took; the others answer with the command itself.
func Dispatch(ctrl Controller, cmd string) (string, error) {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	switch cmd {
	case CmdCalibrate:
		ctrl.RequestCalibration()
	case CmdPause:
		ctrl.Pause()
	case CmdResume:
		ctrl.Resume()
	case CmdBack:
		return ctrl.Back().String(), nil
	case CmdClassic:
		ctrl.SelectClassic()
	default:
		return "", errors.Errorf("unknown command %q", cmd)
	}
	log.Debugf("command: %s", cmd)
	return cmd, nil
}
