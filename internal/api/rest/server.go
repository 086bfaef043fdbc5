package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/janus/internal/logger"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, corsOrigins []string, log logrus.FieldLogger) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(handler, corsOrigins, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the route table
func NewRouter(handler *Handler, corsOrigins []string, log logrus.FieldLogger) *mux.Router {
	httpLog := logger.WithComponent(log, "rest")
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(httpLog))
	router.Use(LoggingMiddleware(httpLog))
	router.Use(CORSMiddleware(corsOrigins))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Picks
	api.HandleFunc("/picks/evaluate", handler.EvaluatePick).Methods("POST", "OPTIONS")
	api.HandleFunc("/picks/evaluate/batch", handler.EvaluateBatch).Methods("POST", "OPTIONS")
	api.HandleFunc("/picks/{pickID}/hedge", handler.GetLatestHedge).Methods("GET")
	api.HandleFunc("/picks/{pickID}/live-line", handler.UpdateLiveLine).Methods("PUT", "OPTIONS")
	api.HandleFunc("/picks/{pickID}", handler.ReleasePick).Methods("DELETE", "OPTIONS")

	// Matchups
	api.HandleFunc("/matchups/shot-zone", handler.GetShotZoneMatchup).Methods("GET")
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")

	// Operations
	api.HandleFunc("/scheduler/status", handler.GetSchedulerStatus).Methods("GET")

	return router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
