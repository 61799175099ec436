package api

import (
	"fmt"
	"sync"

	"robowar/internal/engine"
	"robowar/internal/tournament"
)

// AgentFactory builds an Agent for one seat when a battle or tournament
// is created over the HTTP control plane. The control plane never
// accepts compiled agent code directly — that loader is the
// out-of-scope collaborator named in §1 — so a factory is registered
// once at process start and keyed only by the robot's display name and
// seat index.
type AgentFactory func(spec engine.RobotSpec, index int) engine.Agent

// BattleRecord is the read-only summary the control plane returns for a
// battle that has run to completion.
type BattleRecord struct {
	ID      string
	State   engine.GameState
	Results []engine.RoundResult
	Done    bool
}

// BattleManager runs battles posted to the control plane to completion
// and keeps each one's final snapshot available for retrieval,
// mirroring the teacher's pattern of a manager type sitting behind a
// narrow interface (EngineInterface in the teacher's router.go) that
// the HTTP layer depends on instead of the engine package directly.
type BattleManager struct {
	mu       sync.RWMutex
	battles  map[string]*BattleRecord
	sequence int
	agents   AgentFactory
}

// NewBattleManager builds a manager that seats every battle's robots
// using agents.
func NewBattleManager(agents AgentFactory) *BattleManager {
	return &BattleManager{battles: make(map[string]*BattleRecord), agents: agents}
}

// Create constructs a battle from cfg, runs it to completion, and
// stores its final snapshot under a fresh id.
func (m *BattleManager) Create(cfg engine.BattleConfig) (string, error) {
	agents := make([]engine.Agent, len(cfg.Robots))
	for i, spec := range cfg.Robots {
		agents[i] = m.agents(spec, i)
	}

	bc, err := engine.NewBattleController(cfg, agents)
	if err != nil {
		return "", err
	}
	defer bc.Destroy()

	results := bc.Run()

	m.mu.Lock()
	m.sequence++
	id := fmt.Sprintf("battle-%d", m.sequence)
	m.battles[id] = &BattleRecord{ID: id, State: bc.GetState(), Results: results, Done: true}
	m.mu.Unlock()

	return id, nil
}

// Get returns the stored record for id, if any.
func (m *BattleManager) Get(id string) (*BattleRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.battles[id]
	return r, ok
}

// TournamentRecord is the read-only summary of a completed tournament.
type TournamentRecord struct {
	ID        string
	Standings []tournament.Standing
	Games     []tournament.GameResult
}

// TournamentManager runs tournaments posted to the control plane to
// completion and keeps their standings available for retrieval.
type TournamentManager struct {
	mu       sync.RWMutex
	records  map[string]*TournamentRecord
	sequence int
	agents   AgentFactory
}

// NewTournamentManager builds a manager that seats every game's robots
// using agents, keyed by the robot's display name as its roster id.
func NewTournamentManager(agents AgentFactory) *TournamentManager {
	return &TournamentManager{records: make(map[string]*TournamentRecord), agents: agents}
}

// Create runs a tournament of games games over cfg, seeded from
// baseSeed, to completion, and stores its standings under a fresh id.
func (m *TournamentManager) Create(cfg engine.BattleConfig, games int, baseSeed uint32) (string, error) {
	entrants := make([]tournament.Entrant, len(cfg.Robots))
	for i, spec := range cfg.Robots {
		spec, index := spec, i
		entrants[i] = tournament.Entrant{
			RosterID: spec.Name,
			Build: func(rosterID string) engine.Agent {
				return m.agents(spec, index)
			},
		}
	}

	t := tournament.New(cfg, entrants, games, baseSeed)
	results, err := t.Run(nil, nil)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sequence++
	id := fmt.Sprintf("tournament-%d", m.sequence)
	m.records[id] = &TournamentRecord{ID: id, Standings: t.Standings(), Games: results}
	m.mu.Unlock()

	return id, nil
}

// Get returns the stored record for id, if any.
func (m *TournamentManager) Get(id string) (*TournamentRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	return r, ok
}
