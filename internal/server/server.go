// Package server exposes one dice session over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rcliao/d6calc/internal/render"
	"github.com/rcliao/d6calc/internal/session"
)

// Server serves the state and controls of a single session.
type Server struct {
	sess *session.Session
}

// New creates a server for sess.
func New(sess *session.Session) (*Server, error) {
	if sess == nil {
		return nil, errors.New("session required")
	}
	return &Server{sess: sess}, nil
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/dice", s.handleDice)
	mux.HandleFunc("POST /api/level", s.handleLevel)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("GET /api/watch", s.handleWatch)
	return logMiddleware(mux)
}

type diceReq struct {
	Text string `json:"text"`
}

type levelReq struct {
	Level *int `json:"level"`
	Step  int  `json:"step"`
}

type stateResp struct {
	Session  string         `json:"session"`
	InFlight int            `json:"in_flight"`
	View     render.View    `json:"view"`
	Result   session.Result `json:"result"`
}

func toResp(snap session.Snapshot) stateResp {
	return stateResp{
		Session:  snap.ID,
		InFlight: snap.InFlight,
		View:     render.Project(snap),
		Result:   snap.Result,
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toResp(s.sess.Snapshot()))
}

func (s *Server) handleDice(w http.ResponseWriter, r *http.Request) {
	var req diceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toResp(s.sess.SetRaw(req.Text)))
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	var req levelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var snap session.Snapshot
	switch {
	case req.Level != nil:
		snap = s.sess.SetLevel(*req.Level)
	case req.Step != 0:
		snap = s.sess.StepLevel(req.Step)
	default:
		http.Error(w, "level or step required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toResp(snap))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Submit()
	status := http.StatusAccepted
	if snap.Result.Kind == session.Rejected {
		status = http.StatusOK
	}
	writeJSON(w, status, toResp(snap))
}

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
	watchPingEvery = (watchPongWait * 9) / 10
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleWatch pushes the state once on connect and again after every change.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates, cancel := s.sess.Subscribe()
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(watchPongWait)); err != nil {
		log.Printf("watch set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})

	// reader: only needed to process control frames and notice close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) error {
		if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(v)
	}

	if err := write(toResp(s.sess.Snapshot())); err != nil {
		return
	}

	ticker := time.NewTicker(watchPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(watchWriteWait))
				return
			}
			if err := write(toResp(snap)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
