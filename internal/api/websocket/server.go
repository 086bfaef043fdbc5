package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server represents the WebSocket server
type Server struct {
	port     string
	server   *http.Server
	hub      *Hub
	upgrader websocket.Upgrader
	ctx      context.Context
	log      logrus.FieldLogger
}

// NewServer creates a new WebSocket server. An empty origin list or "*" accepts any origin.
func NewServer(port string, hub *Hub, allowedOrigins []string, log logrus.FieldLogger) *Server {
	s := &Server{
		port: port,
		hub:  hub,
		ctx:  context.Background(),
		log:  log.WithField("component", "ws_server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the websocket routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/picks", s.handlePicks)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Start runs the hub and serves until Shutdown
func (s *Server) Start(ctx context.Context) error {
	s.ctx = ctx
	go s.hub.Run(ctx)

	s.log.WithField("port", s.port).Info("WebSocket server listening")
	return s.server.ListenAndServe()
}

// Broadcast pushes v to connected clients
func (s *Server) Broadcast(v interface{}) {
	s.hub.Broadcast(v)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handlePicks upgrades a connection and streams hedge actions to it
func (s *Server) handlePicks(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := NewClient(uuid.NewString(), conn, s.hub, s.log)
	s.hub.Register(client)

	go client.WritePump(s.ctx)
	go client.ReadPump(s.ctx)
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
		"metrics": s.hub.Metrics(),
	})
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
