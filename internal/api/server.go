// Package api exposes the bridge over HTTP: health, the normalized model,
// command endpoints backed by the entity layer, and a WebSocket feed that
// pushes every snapshot publish.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
	"github.com/AlexOwl/jtechdigital-ha/internal/entity"
	"github.com/AlexOwl/jtechdigital-ha/internal/matrix"
)

// Server provides the HTTP surface over the coordinator and entities.
type Server struct {
	coordinator *matrix.Coordinator
	opts        entity.Options
	clk         clock.Clock
	logger      *zap.Logger
	server      *http.Server
	upgrader    websocket.Upgrader
}

// NewServer creates the API server listening on addr.
func NewServer(coordinator *matrix.Coordinator, opts entity.Options, clk clock.Clock, logger *zap.Logger, addr string) *Server {
	s := &Server{
		coordinator: coordinator,
		opts:        opts,
		clk:         clk,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/outputs", s.handleOutputs)
	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("POST /api/power", s.handlePower)
	mux.HandleFunc("POST /api/outputs/{output}/source", s.handleSelectSource)
	mux.HandleFunc("POST /api/outputs/{output}/power", s.handleOutputPower)
	mux.HandleFunc("POST /api/outputs/{output}/command", s.handleOutputCommand)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the route handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves in the background.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP API server", zap.String("addr", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP API server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"connected": s.coordinator.Connected(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coordinator.Status())
}

// OutputResponse is one output with its 1-based number and derived player
// state.
type OutputResponse struct {
	Output int               `json:"output"`
	State  entity.PlayerState `json:"state"`
	matrix.OutputInfo
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	outputs := s.coordinator.Outputs()
	resp := make([]OutputResponse, len(outputs))
	for i, info := range outputs {
		player := entity.NewMediaPlayer(s.coordinator, i+1, s.opts, s.logger, s.clk)
		resp[i] = OutputResponse{
			Output:     i + 1,
			State:      player.State(),
			OutputInfo: info,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SourceResponse is one source with its 1-based number.
type SourceResponse struct {
	Source int `json:"source"`
	matrix.SourceInfo
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := s.coordinator.Sources()
	resp := make([]SourceResponse, len(sources))
	for i, info := range sources {
		resp[i] = SourceResponse{Source: i + 1, SourceInfo: info}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type powerRequest struct {
	Power bool `json:"power"`
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	master := entity.NewMasterPlayer(s.coordinator, s.logger)
	var err error
	if req.Power {
		err = master.TurnOn(r.Context())
	} else {
		err = master.TurnOff(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// outputParam parses the {output} path segment into a 1-based number.
func (s *Server) outputParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("output"))
	if err != nil || n < 1 {
		http.Error(w, "invalid output number", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

type selectSourceRequest struct {
	Source string `json:"source"`
}

func (s *Server) handleSelectSource(w http.ResponseWriter, r *http.Request) {
	output, ok := s.outputParam(w, r)
	if !ok {
		return
	}
	var req selectSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Source == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	player := entity.NewMediaPlayer(s.coordinator, output, s.opts, s.logger, s.clk)
	if err := player.SelectSource(r.Context(), req.Source); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleOutputPower(w http.ResponseWriter, r *http.Request) {
	output, ok := s.outputParam(w, r)
	if !ok {
		return
	}
	var req powerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	player := entity.NewMediaPlayer(s.coordinator, output, s.opts, s.logger, s.clk)
	var err error
	if req.Power {
		err = player.TurnOn(r.Context())
	} else {
		err = player.TurnOff(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type commandRequest struct {
	Command string `json:"command"`
	Repeats int    `json:"repeats"`
}

func (s *Server) handleOutputCommand(w http.ResponseWriter, r *http.Request) {
	output, ok := s.outputParam(w, r)
	if !ok {
		return
	}
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	remote := entity.NewRemote(s.coordinator, output, s.logger)
	if err := remote.SendCommand(r.Context(), []string{req.Command}, req.Repeats); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Event is one WebSocket message: the full snapshot after a publish.
type Event struct {
	Connected bool                `json:"connected"`
	Status    matrix.Status       `json:"status"`
	Outputs   []matrix.OutputInfo `json:"outputs"`
	Sources   []matrix.SourceInfo `json:"sources"`
}

// handleEvents upgrades to WebSocket and pushes the current snapshot
// immediately, then again after every coordinator publish. Slow consumers
// skip intermediate snapshots instead of queueing them.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	notify := make(chan struct{}, 1)
	unsubscribe := s.coordinator.Subscribe(func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	// Reader goroutine: we only care about the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		snap := s.coordinator.GetSnapshot()
		return conn.WriteJSON(Event{
			Connected: snap.Connected,
			Status:    snap.Status,
			Outputs:   snap.Outputs,
			Sources:   snap.Sources,
		})
	}

	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-notify:
			if err := send(); err != nil {
				return
			}
		}
	}
}
