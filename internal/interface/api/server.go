// internal/interface/api/server.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"flightdeck-service/internal/domain/repository"
	"flightdeck-service/internal/usecase"
	"flightdeck-service/pkg/feed"
	"flightdeck-service/pkg/logger"
)

// Server is the inspection and control surface over the browsing pipeline.
// The real presentation layer is elsewhere; this exposes the observable
// state, the imperative entry points and a websocket event firehose.
type Server struct {
	browser *usecase.Browser
	history repository.RunHistory
	hub     *feed.Hub
	logger  logger.Logger
}

// NewServer creates an API server over the pipeline surfaces.
func NewServer(browser *usecase.Browser, history repository.RunHistory, hub *feed.Hub, log logger.Logger) *Server {
	return &Server{
		browser: browser,
		history: history,
		hub:     hub,
		logger:  log,
	}
}

// RegisterRoutes attaches every endpoint to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/flights", s.HandleFlights)
	mux.HandleFunc("GET /api/state", s.HandleState)
	mux.HandleFunc("GET /api/criteria", s.HandleGetCriteria)
	mux.HandleFunc("POST /api/criteria", s.HandleSetCriteria)
	mux.HandleFunc("POST /api/criteria/parse", s.HandleParseCriteria)
	mux.HandleFunc("POST /api/criteria/restore", s.HandleRestoreCriteria)
	mux.HandleFunc("GET /api/criteria/history", s.HandleCriteriaHistory)
	mux.HandleFunc("POST /api/load", s.HandleLoad)
	mux.HandleFunc("POST /api/load-all", s.HandleLoadAll)
	mux.HandleFunc("POST /api/load-more", s.HandleLoadMore)
	mux.HandleFunc("POST /api/search", s.HandleSearch)
	mux.HandleFunc("POST /api/benchmark", s.HandleBenchmark)
	mux.HandleFunc("GET /api/runs/sort", s.HandleSortRuns)
	mux.HandleFunc("GET /api/runs/search", s.HandleSearchRuns)
	mux.HandleFunc("GET /ws/events", s.HandleEvents)
	mux.HandleFunc("GET /health", s.HandleHealth)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

// CorsMiddleware allows browser-based inspection tools on other origins.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs each request with its duration.
func LoggingMiddleware(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(started).String())
	})
}
