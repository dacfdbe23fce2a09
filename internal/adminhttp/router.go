// Package adminhttp is the ops-facing HTTP surface: health check,
// Prometheus scrape endpoint, a JSON status summary, and a read-only
// spectator WebSocket feed of match state (adapted from the teacher's
// chi+cors router and WebSocket hub onto this server's own state).
package adminhttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"icehockey/internal/config"
)

// StatusProvider is implemented by the server and queried for the JSON
// /status payload and each spectate broadcast tick.
type StatusProvider interface {
	Status() Status
}

// Status is the read-only snapshot served to operators and spectators.
// It carries no per-skater input or physics detail — just what a
// dashboard or spectator client needs (§1 excludes the physics/rink
// internals from this surface).
type Status struct {
	ServerName   string         `json:"server_name"`
	SessionCount int            `json:"session_count"`
	Period       int            `json:"period"`
	RedScore     int            `json:"red_score"`
	BlueScore    int            `json:"blue_score"`
	TimeLeft     int            `json:"time_left"`
	GameOver     bool           `json:"game_over"`
	Paused       bool           `json:"paused"`
	Players      []PlayerStatus `json:"players"`
}

// PlayerStatus is one session's spectator-facing summary.
type PlayerStatus struct {
	SessionIndex int    `json:"session_index"`
	Name         string `json:"name"`
	Team         string `json:"team"`
}

// RouterConfig carries the router's dependencies (§ ambient stack —
// chi/cors middleware the same way the teacher wires its API router).
type RouterConfig struct {
	Admin    config.AdminConfig
	Provider StatusProvider
	Hub      *Hub
}

// NewRouter builds the admin HTTP mux. Pure function, no goroutines or
// listeners started — safe to exercise with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Admin.AllowedOrigins,
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg.Provider.Status())
	})

	if cfg.Hub != nil {
		r.Get("/spectate", cfg.Hub.HandleWebSocket)
	}

	return r
}
