package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with a WebSocket hub broadcasting
// battle state, mirroring the teacher's internal/api/server.go split
// between a pure router and a stateful Server wrapper.
type Server struct {
	battle      BattleView
	tournament  TournamentView
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer constructs a Server around the given battle/tournament
// views. Background workers do NOT start until Start is called, so
// the router can be exercised in tests via httptest without opening a
// listener or launching goroutines.
func NewServer(battle BattleView, tournament TournamentView) *Server {
	return NewServerWithManagers(battle, tournament, nil, nil)
}

// NewServerWithManagers is NewServer plus the optional multi-battle and
// multi-tournament REST managers (POST /battles, POST /tournaments);
// either manager may be nil, which leaves the corresponding routes
// reporting 503.
func NewServerWithManagers(battle BattleView, tournament TournamentView, battles *BattleManager, tournaments *TournamentManager) *Server {
	s := &Server{
		battle:      battle,
		tournament:  tournament,
		wsHub:       NewWebSocketHub(),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Battle:            battle,
		Tournament:        tournament,
		BattleManager:     battles,
		TournamentManager: tournaments,
		RateLimiter:       s.rateLimiter,
	})
	s.router.Get("/ws", s.handleWS)

	return s
}

// Start begins serving HTTP and starts the WebSocket broadcast loop.
// This is the only method that opens a network listener or launches
// goroutines; call it exactly once.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.battle)

	log.Printf("🌐 control plane listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop releases the rate limiter's background cleanup goroutine.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
