// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/gyro_games/internal/control"
	"github.com/relabs-tech/gyro_games/internal/game"
	"github.com/relabs-tech/gyro_games/internal/maze"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local network only
	},
}

const sendBuffer = 16

// WSMessage is sent from browsers.
type WSMessage struct {
	Action string `json:"action"`
}

// WSResponse is pushed to browsers.
type WSResponse struct {
	Type        string               `json:"type"` // hello, frame, maze, calibrated, ack, error
	Frame       *game.Frame          `json:"frame,omitempty"`
	Maze        *MazeLayout          `json:"maze,omitempty"`
	Calibration *control.Calibration `json:"calibration,omitempty"`
	Action      string               `json:"action,omitempty"`
	Result      string               `json:"result,omitempty"`
	Message     string               `json:"message,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebServer streams a session to browsers and accepts commands from them.
// It is also a game.Presenter.
type WebServer struct {
	ctrl     Controller
	interval uint64
	// OpenRegisters, when set, enables the register debug socket.
	OpenRegisters RegisterOpener

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	frame   *game.Frame
	layout  *MazeLayout
	cal     *control.Calibration
}

func NewWebServer(ctrl Controller, interval int) *WebServer {
	if interval < 1 {
		interval = 1
	}
	return &WebServer{
		ctrl:     ctrl,
		interval: uint64(interval),
		clients:  make(map[*wsClient]struct{}),
	}
}

// Handler returns the HTTP routes.
func (w *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", w.handleWS)
	mux.HandleFunc("/api/state", w.handleState)
	mux.HandleFunc("/api/maze", w.handleMaze)
	if w.OpenRegisters != nil {
		mux.HandleFunc("/ws/registers", func(rw http.ResponseWriter, r *http.Request) {
			HandleRegisterDebugWS(rw, r, w.OpenRegisters)
		})
	}
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// ListenAndServe serves on port until ctx is done.
func (w *WebServer) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           w.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}
	return nil
}

func (w *WebServer) MoveObject(f game.Frame) {
	w.mu.Lock()
	w.frame = &f
	w.mu.Unlock()
	if f.Tick%w.interval == 0 {
		w.broadcast(WSResponse{Type: "frame", Frame: &f})
	}
}

func (w *WebServer) ShowMaze(topo *maze.Topology, level int) {
	layout := NewMazeLayout(topo, level)
	w.mu.Lock()
	w.layout = &layout
	w.mu.Unlock()
	w.broadcast(WSResponse{Type: "maze", Maze: &layout})
}

func (w *WebServer) Calibrated(cal control.Calibration) {
	w.mu.Lock()
	w.cal = &cal
	w.mu.Unlock()
	w.broadcast(WSResponse{Type: "calibrated", Calibration: &cal})
}

// broadcast drops the message for clients whose buffer is full.
func (w *WebServer) broadcast(resp WSResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("web: json marshal error: %v", err)
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for c := range w.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func (w *WebServer) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	w.mu.Lock()
	w.clients[c] = struct{}{}
	hello := WSResponse{Type: "hello", Frame: w.frame, Maze: w.layout, Calibration: w.cal}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()
	w.reply(c, hello)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket read error: %v", err)
			}
			break
		}
		result, err := Dispatch(w.ctrl, msg.Action)
		if err != nil {
			w.reply(c, WSResponse{Type: "error", Action: msg.Action, Message: err.Error()})
			continue
		}
		w.reply(c, WSResponse{Type: "ack", Action: msg.Action, Result: result})
	}

	w.mu.Lock()
	delete(w.clients, c)
	close(c.send)
	w.mu.Unlock()
	<-done
}

func (w *WebServer) reply(c *wsClient, resp WSResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("web: json marshal error: %v", err)
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if _, ok := w.clients[c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Warn("web: client send buffer full, reply dropped")
	}
}

func (w *WebServer) handleState(rw http.ResponseWriter, r *http.Request) {
	w.mu.RLock()
	frame := w.frame
	w.mu.RUnlock()

	if frame == nil {
		http.Error(rw, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(rw, frame)
}

func (w *WebServer) handleMaze(rw http.ResponseWriter, r *http.Request) {
	w.mu.RLock()
	layout := w.layout
	w.mu.RUnlock()

	if layout == nil {
		http.Error(rw, "no maze yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(rw, layout)
}

func writeJSON(rw http.ResponseWriter, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}
