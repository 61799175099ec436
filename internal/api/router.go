// Package api exposes the battle/tournament control plane over HTTP
// and WebSocket, grounded on the teacher's internal/api/router.go: a
// pure NewRouter factory (no goroutines, no listeners) that a Server
// wraps to add the stateful WebSocket hub.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"robowar/internal/engine"
	"robowar/internal/tournament"
)

// BattleView is the read-only surface of a running battle the API
// layer needs. Kept minimal and mockable, same intent as the
// teacher's EngineInterface.
type BattleView interface {
	GetState() engine.GameState
	IsBattleOver() bool
}

// TournamentView is the read-only surface of a tournament run.
type TournamentView interface {
	Standings() []tournament.Standing
}

// RouterConfig carries every dependency NewRouter needs to build
// routes, mirroring the teacher's dependency-injection shape.
type RouterConfig struct {
	Battle     BattleView
	Tournament TournamentView

	// BattleManager and TournamentManager back the multi-battle REST
	// surface (POST /battles, POST /tournaments); either may be nil,
	// in which case the corresponding routes report 503.
	BattleManager     *BattleManager
	TournamentManager *TournamentManager

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	CORSOrigins []string

	// DisableLogging turns off the request logger middleware, useful
	// for benchmarks.
	DisableLogging bool
}

type routerHandlers struct {
	battle     BattleView
	tournament TournamentView

	battleManager     *BattleManager
	tournamentManager *TournamentManager
}

// NewRouter builds the HTTP router with all middleware and routes.
// It is pure: no goroutines are started and no listener is opened, so
// it is safe to drive directly with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		battle:            cfg.Battle,
		tournament:        cfg.Tournament,
		battleManager:     cfg.BattleManager,
		tournamentManager: cfg.TournamentManager,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/battle/state", h.handleBattleState)
		r.Get("/tournament/standings", h.handleTournamentStandings)

		r.Post("/battles", h.handleCreateBattle)
		r.Get("/battles/{id}/snapshot", h.handleBattleSnapshot)

		r.Post("/tournaments", h.handleCreateTournament)
		r.Get("/tournaments/{id}/standings", h.handleTournamentStandingsByID)
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]string{"service": "robowar-control-plane"})
	})

	return r
}
