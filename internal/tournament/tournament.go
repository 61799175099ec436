// Package tournament runs a sequence of battles and accumulates
// standings across games, grounded on the teacher's TeamManager
// leaderboard pattern (descending points, tie-broken by win count).
package tournament

import (
	"log"
	"sort"

	"robowar/internal/engine"
	"robowar/internal/metrics"
)

// AgentFactory builds a fresh Agent for one seat of one game, keyed by the
// roster id supplied at Tournament construction (so the same compiled
// agent can occupy more than one seat).
type AgentFactory func(rosterID string) engine.Agent

// Entrant is one participant: a roster id (used to key standings) and
// the factory that builds its Agent for each game.
type Entrant struct {
	RosterID string
	Build    AgentFactory
}

// GameResult is the outcome of one completed game.
type GameResult struct {
	Index   int
	Seed    uint32
	Results []engine.RoundResult
}

// Standing is one entrant's accumulated tournament record.
type Standing struct {
	RosterID string
	Points   float64
	Wins     int
}

// Tournament runs Games games, each a single round seeded from
// BaseSeed+i, using the same BattleConfig shape for every game except
// the seed.
type Tournament struct {
	Config   engine.BattleConfig
	Entrants []Entrant
	Games    int
	BaseSeed uint32

	standings map[string]*Standing
}

// New constructs a Tournament ready to Run.
func New(cfg engine.BattleConfig, entrants []Entrant, games int, baseSeed uint32) *Tournament {
	return &Tournament{
		Config:    cfg,
		Entrants:  entrants,
		Games:     games,
		BaseSeed:  baseSeed,
		standings: make(map[string]*Standing),
	}
}

func (t *Tournament) standingFor(rosterID string) *Standing {
	s, ok := t.standings[rosterID]
	if !ok {
		s = &Standing{RosterID: rosterID}
		t.standings[rosterID] = s
	}
	return s
}

func (t *Tournament) playGame(index int) (GameResult, error) {
	seed := t.BaseSeed + uint32(index)
	cfg := t.Config
	cfg.MasterSeed = seed
	cfg.RoundCount = 1

	agents := make([]engine.Agent, len(t.Entrants))
	for i, e := range t.Entrants {
		agents[i] = e.Build(e.RosterID)
	}

	bc, err := engine.NewBattleController(cfg, agents)
	if err != nil {
		return GameResult{}, err
	}
	defer bc.Destroy()

	results := bc.Run()

	return GameResult{Index: index, Seed: seed, Results: results}, nil
}

// accumulate folds one completed game's final-round placements into
// standings. Callers are responsible for serializing access — Run
// calls it inline on its own goroutine; RunParallel calls it only
// after every worker goroutine has finished.
func (t *Tournament) accumulate(r GameResult) {
	if len(r.Results) == 0 {
		return
	}
	for _, placement := range r.Results[len(r.Results)-1].Ranking {
		entrant := t.Entrants[placement.RobotID]
		standing := t.standingFor(entrant.RosterID)
		standing.Points += placement.Points
		if placement.Place == 1 {
			standing.Wins++
		}
	}
}

// Run executes every game sequentially, per the spec-mandated loop.
// shouldAbort is polled before each game; onGameComplete, if non-nil,
// is invoked after each game completes. The loop's only yield point
// between games is the call to shouldAbort itself.
func (t *Tournament) Run(shouldAbort func() bool, onGameComplete func(GameResult)) ([]GameResult, error) {
	var all []GameResult
	for i := 0; i < t.Games; i++ {
		if shouldAbort != nil && shouldAbort() {
			metrics.TournamentGamesAborted.Inc()
			log.Printf("📊 tournament aborted after %d/%d games", i, t.Games)
			return all, engine.ErrTournamentAborted
		}
		result, err := t.playGame(i)
		if err != nil {
			return all, err
		}
		metrics.TournamentGamesTotal.Inc()
		all = append(all, result)
		t.accumulate(result)
		if onGameComplete != nil {
			onGameComplete(result)
		}
	}
	log.Printf("📊 tournament complete: %d games played", len(all))
	return all, nil
}

// Standings returns the current accumulated standings, sorted by
// descending points and tie-broken by descending win count.
func (t *Tournament) Standings() []Standing {
	out := make([]Standing, 0, len(t.standings))
	for _, s := range t.standings {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Wins > out[j].Wins
	})
	return out
}
