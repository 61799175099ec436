// Package metrics exposes Prometheus collectors for the battle engine
// and tournament layer, grounded on the teacher's
// internal/api/observability.go (promauto collectors, bounded-
// cardinality labels, localhost-only debug server).
package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "battle_tick_duration_seconds",
		Help:    "Wall-clock time spent in one BattleController.Tick call.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
	})

	ActiveRobots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "battle_active_robots",
		Help: "Number of alive robots in the current battle.",
	})

	// EventsTotal is labeled by event type, a small bounded enum —
	// never by a user-supplied id — matching the teacher's
	// DoS-avoidance convention for label cardinality.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "battle_events_total",
		Help: "Count of pipeline events emitted, by event type.",
	}, []string{"event_type"})

	AgentFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agent_faults_total",
		Help: "Count of recovered panics raised from an Agent callback.",
	})

	TournamentGamesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tournament_games_total",
		Help: "Count of tournament games completed.",
	})

	TournamentGamesAborted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tournament_games_aborted_total",
		Help: "Count of tournament runs ended early via shouldAbort.",
	})

	// ConnectionsRejected is labeled by reason (rate_limit, origin,
	// ws_total_limit, ws_ip_limit) — a small fixed enum, never a
	// caller-supplied value.
	ConnectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_connections_rejected_total",
		Help: "Count of HTTP/WebSocket connections rejected, by reason.",
	}, []string{"reason"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "api_ws_connections",
		Help: "Current number of open WebSocket connections.",
	})

	WSMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_ws_messages_total",
		Help: "Count of WebSocket broadcast messages sent.",
	})
)

// ObservabilityConfig mirrors the teacher's localhost-only,
// security-conscious debug server default.
type ObservabilityConfig struct {
	Addr          string
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig binds to loopback only, same as the
// reference design.
var DefaultObservabilityConfig = ObservabilityConfig{
	Addr: "127.0.0.1:6060",
}

// StartDebugServer launches a /metrics + /health HTTP server in its
// own goroutine. The caller owns the returned server's lifetime and
// should call Shutdown when done — construction itself starts the
// listener, matching the teacher's explicit "only Start() launches
// goroutines" convention at this one boundary.
func StartDebugServer(cfg ObservabilityConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return
		}
	}()
	return srv
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick times a BattleController.Tick call and exports the
// duration plus the alive-robot gauge in one call site.
func RecordTick(aliveRobots int, fn func()) {
	start := time.Now()
	fn()
	TickDuration.Observe(time.Since(start).Seconds())
	ActiveRobots.Set(float64(aliveRobots))
}

// ShutdownDebugServer gives the debug HTTP server a bounded window to
// drain before closing.
func ShutdownDebugServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
