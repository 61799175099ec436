package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"robowar/internal/api"
	"robowar/internal/config"
	"robowar/internal/engine"
	"robowar/internal/metrics"
	"robowar/internal/tournament"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML/JSON/TOML configuration file")
		addr       = flag.String("addr", ":3000", "control plane listen address")
		games      = flag.Int("games", 1, "number of games to play")
		agentNames = flag.String("agents", "", "comma-separated roster ids to run (uses the built-in sentinel roster)")
	)
	flag.Parse()

	log.Println("🤖 ================================")
	log.Println("🤖  ROBOWAR BATTLE SIMULATOR")
	log.Println("🤖 ================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ configuration: %v", err)
	}
	log.Printf("🤖 config: %.0fx%.0f arena, %d ticks/round, seed %d", cfg.ArenaWidth, cfg.ArenaHeight, cfg.TicksPerRound, cfg.MasterSeed)

	if os.Getenv("ROBOWAR_DISABLE_DEBUG_SERVER") != "true" {
		debugCfg := metrics.DefaultObservabilityConfig
		srv := metrics.StartDebugServer(debugCfg)
		defer metrics.ShutdownDebugServer(srv)
		log.Printf("📊 metrics: http://%s/metrics", debugCfg.Addr)
	}

	entrants := buildEntrants(*agentNames)
	if len(cfg.Robots) != len(entrants) {
		cfg.Robots = cfg.Robots[:0]
		for _, e := range entrants {
			cfg.Robots = append(cfg.Robots, engine.RobotSpec{Name: e.RosterID})
		}
	}
	t := tournament.New(cfg, entrants, *games, cfg.MasterSeed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentFactory := func(spec engine.RobotSpec, index int) engine.Agent {
		return &sentinelAgent{}
	}
	battles := api.NewBattleManager(agentFactory)
	tournaments := api.NewTournamentManager(agentFactory)

	lastGame := &lastGameView{}
	server := api.NewServerWithManagers(lastGame, t, battles, tournaments)
	go func() {
		if err := server.Start(*addr); err != nil {
			log.Printf("⚠️ control plane stopped: %v", err)
		}
	}()
	defer server.Stop()

	go func() {
		_, err := t.Run(func() bool {
			select {
			case <-ctx.Done():
				return true
			default:
				return false
			}
		}, func(r tournament.GameResult) {
			lastGame.set(r)
			log.Printf("🤖 game %d complete: %d rounds played", r.Index, len(r.Results))
		})
		if err != nil {
			log.Printf("⚠️ tournament ended: %v", err)
		}
		log.Println("🤖 standings:")
		for i, s := range t.Standings() {
			log.Printf("  %d. %s — %.1f pts, %d wins", i+1, s.RosterID, s.Points, s.Wins)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 shutting down...")
	cancel()
	time.Sleep(100 * time.Millisecond)
	log.Println("👋 goodbye!")
}

// buildEntrants assembles a roster from a comma-separated id list,
// falling back to two sentinel agents so the server has something to
// run out of the box.
func buildEntrants(names string) []tournament.Entrant {
	ids := splitNonEmpty(names)
	if len(ids) == 0 {
		ids = []string{"alpha", "bravo"}
	}
	entrants := make([]tournament.Entrant, len(ids))
	for i, id := range ids {
		entrants[i] = tournament.Entrant{
			RosterID: id,
			Build: func(rosterID string) engine.Agent {
				return &sentinelAgent{}
			},
		}
	}
	return entrants
}

func splitNonEmpty(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// sentinelAgent is a minimal placeholder used when the operator
// hasn't wired a real roster; it turns slowly and never fires, giving
// the control plane something observable to broadcast.
type sentinelAgent struct {
	api *engine.API
}

func (a *sentinelAgent) Init(api *engine.API)             { a.api = api }
func (a *sentinelAgent) Tick()                            { a.api.SetTurnRate(1) }
func (a *sentinelAgent) OnScan(distance, bearing float64) {}
func (a *sentinelAgent) OnScanned(bearing float64)        {}
func (a *sentinelAgent) OnHit(damage, bearing float64)    {}
func (a *sentinelAgent) OnBulletHit(targetID int)         {}
func (a *sentinelAgent) OnWallHit(bearing float64)        {}
func (a *sentinelAgent) OnRobotHit(bearing float64)       {}
func (a *sentinelAgent) OnBulletMiss()                    {}
func (a *sentinelAgent) OnRobotDeath(robotID int)         {}
func (a *sentinelAgent) Destroy()                         {}

// lastGameView adapts the most recently completed game (updated after
// each one by the tournament loop's goroutine, read by the broadcast
// loop's) into the rolling api.BattleView the control plane serves;
// the tournament layer runs whole games atomically, so there is no
// in-progress GameState to serve between ticks.
type lastGameView struct {
	mu   sync.Mutex
	last *tournament.GameResult
}

func (v *lastGameView) set(r tournament.GameResult) {
	v.mu.Lock()
	v.last = &r
	v.mu.Unlock()
}

func (v *lastGameView) GetState() engine.GameState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.last == nil || len(v.last.Results) == 0 {
		return engine.GameState{}
	}
	return engine.GameState{Round: len(v.last.Results), RoundOver: true}
}

func (v *lastGameView) IsBattleOver() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last != nil && len(v.last.Results) > 0
}
