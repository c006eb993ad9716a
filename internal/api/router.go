package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blockduel/blockduel-go/internal/api/handler"
	apimiddleware "github.com/blockduel/blockduel-go/internal/api/middleware"
	"github.com/blockduel/blockduel-go/internal/middleware"
	"github.com/blockduel/blockduel-go/internal/services/match"
	"github.com/blockduel/blockduel-go/internal/services/snapshot"
	"github.com/blockduel/blockduel-go/internal/transport"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	MatchController match.ControllerInterface
	SnapshotService *snapshot.Service
	Transport       transport.Transport
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	matchHandler := handler.NewMatchHandler(cfg.MatchController, cfg.SnapshotService, cfg.Transport, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.MatchController, cfg.Transport, cfg.Logger)

	// Create middleware
	identityMiddleware := apimiddleware.Identity()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Match routes (all require a player identity)
	matches := api.PathPrefix("/matches").Subrouter()
	matches.Use(identityMiddleware)
	matches.HandleFunc("", matchHandler.Create).Methods(http.MethodPost)
	matches.HandleFunc("/join", matchHandler.Join).Methods(http.MethodPost)
	matches.HandleFunc("/{id}", matchHandler.Get).Methods(http.MethodGet)
	matches.HandleFunc("/{id}/ready", matchHandler.Ready).Methods(http.MethodPost)
	matches.HandleFunc("/{id}/finish", matchHandler.Finish).Methods(http.MethodPost)
	matches.HandleFunc("/{id}/snapshot", matchHandler.Snapshot).Methods(http.MethodGet)

	// Event relay routes
	matches.HandleFunc("/{id}/events", eventsHandler.Publish).Methods(http.MethodPost)
	matches.HandleFunc("/{id}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
