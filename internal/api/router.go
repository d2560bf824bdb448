package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"chessroom/internal/middleware"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger    *slog.Logger
	WSHandler http.Handler
}

// NewRouter creates the router with all routes configured. The event
// surface lives entirely on the websocket endpoint; there is no REST API
// beyond the health check.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	r.Handle("/ws", cfg.WSHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
