// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/sensors"
)

// RegisterOpener opens a transport dedicated to one debug connection.
type RegisterOpener func() (sensors.RegisterTransport, error)

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	tr   sensors.RegisterTransport
}

// RegisterCmd is a browser request: get_map, read, read_all or write.
type RegisterCmd struct {
	Action  string `json:"action"`
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is the reply to a RegisterCmd.
type RegisterResponse struct {
	Type        string                 `json:"type"` // register_data, register_map, error
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// HandleRegisterDebugWS handles the WebSocket connection for register debugging
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request, open RegisterOpener) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	tr, err := open()
	if err != nil {
		conn.WriteJSON(RegisterResponse{Type: "error", Message: fmt.Sprintf("open transport: %v", err)})
		return
	}
	defer tr.Close()

	session := &RegisterDebugSession{Conn: conn, tr: tr}
	session.sendRegisterMap()

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}
		session.handle(cmd)
	}
}

func (s *RegisterDebugSession) handle(cmd RegisterCmd) {
	switch cmd.Action {
	case "get_map":
		s.sendRegisterMap()
	case "read":
		s.handleRead(cmd)
	case "read_all":
		s.handleReadAll()
	case "write":
		s.handleWrite(cmd)
	default:
		s.sendError(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func (s *RegisterDebugSession) handleRead(cmd RegisterCmd) {
	var addr byte
	if _, err := fmt.Sscanf(cmd.Address, "0x%X", &addr); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
		return
	}
	buf, err := s.tr.ReadRegisters(addr, 1)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", buf[0]),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleReadAll() {
	values, err := sensors.DumpRegisters(s.tr)
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}
	regs := make(map[string]string, len(values))
	for _, v := range values {
		regs[fmt.Sprintf("0x%02X", v.Address)] = fmt.Sprintf("0x%02X", v.Value)
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Registers: regs,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// handleWrite only accepts registers the map marks RW.
func (s *RegisterDebugSession) handleWrite(cmd RegisterCmd) {
	var addr, value byte
	if _, err := fmt.Sscanf(cmd.Address, "0x%X", &addr); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
		return
	}
	if _, err := fmt.Sscanf(cmd.Value, "0x%X", &value); err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", cmd.Value))
		return
	}
	if !isRegisterWritable(addr) {
		s.sendError(fmt.Sprintf("register 0x%02X is not writable", addr))
		return
	}
	if err := s.tr.WriteRegister(addr, value); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}
	s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	})
}

func (s *RegisterDebugSession) sendRegisterMap() {
	s.Conn.WriteJSON(RegisterResponse{Type: "register_map", RegisterMap: sensors.QMI8658RegisterMap()})
}

func (s *RegisterDebugSession) sendError(message string) {
	s.Conn.WriteJSON(RegisterResponse{Type: "error", Message: message})
}

func isRegisterWritable(addr byte) bool {
	for _, info := range sensors.QMI8658RegisterMap() {
		if info.Address == addr {
			return info.Access == "RW" || info.Access == "W"
		}
	}
	return false
}
