package engine

import (
	"log"

	"robowar/internal/geom"
	"robowar/internal/metrics"
)

// RoundResult records one completed round's placements and the reason
// it ended.
type RoundResult struct {
	Round   int
	Reason  string
	Ranking []Placement
}

// Placement is one robot's finishing position in a round.
type Placement struct {
	RobotID int
	Place   int
	Points  float64
}

// BattleController drives the tick pipeline, owns the single World and
// PRNG for the battle, and manages round transitions. It is the
// external entry point a Tournament or HTTP control-plane layer uses.
type BattleController struct {
	cfg   BattleConfig
	world *World
	hosts []*agentHost

	roundOver  bool
	battleOver bool
	destroyed  bool

	roundResults []RoundResult
}

// NewBattleController constructs a battle with one Agent per RobotSpec
// in cfg.Robots, in order. Construction-time invalid configuration is
// reported as an error per §7; it never panics.
func NewBattleController(cfg BattleConfig, agents []Agent) (*BattleController, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if len(agents) != len(cfg.Robots) {
		return nil, ErrInvalidConfig
	}

	w := newWorld(cfg, cfg.MasterSeed)
	bc := &BattleController{cfg: cfg, world: w}

	for i, spec := range cfg.Robots {
		r := newRobot(i, spec, cfg)
		w.robots = append(w.robots, r)
	}
	bc.placeRobots()

	bc.hosts = make([]*agentHost, len(agents))
	for i, ag := range agents {
		r := w.robots[i]
		api := &API{robot: r, world: w, cfg: cfg, onFault: bc.onAgentFault}
		host := newAgentHost(ag, api, &w.faultCount)
		bc.hosts[i] = host
		r.agent = host
		host.init()
	}

	log.Printf("🏁 battle constructed: %d robots, seed=%d", len(agents), cfg.MasterSeed)
	return bc, nil
}

func (bc *BattleController) onAgentFault(robotID int, site string, recovered any) {
	log.Printf("⚠️  agent fault: robot=%d site=%s recovered=%v", robotID, site, recovered)
}

// placeRobots scatters robots uniformly using the battle PRNG, subject
// to a minimum pairwise spacing, with a bounded rejection budget per
// robot (falls back to the last candidate if the budget is exhausted).
func (bc *BattleController) placeRobots() {
	w := bc.world
	for _, r := range w.robots {
		var x, y float64
		for attempt := 0; attempt < bc.cfg.SpawnAttemptBudget; attempt++ {
			x = w.rng.NextRange(bc.cfg.RobotRadius, bc.cfg.ArenaWidth-bc.cfg.RobotRadius)
			y = w.rng.NextRange(bc.cfg.RobotRadius, bc.cfg.ArenaHeight-bc.cfg.RobotRadius)
			if bc.farEnoughFromRobots(x, y, r.id) {
				break
			}
		}
		r.x, r.y = x, y
	}
}

func (bc *BattleController) farEnoughFromRobots(x, y float64, exceptID int) bool {
	for _, other := range bc.world.robots {
		if other.id == exceptID {
			continue
		}
		if other.x == 0 && other.y == 0 {
			continue
		}
		if geom.Distance(x, y, other.x, other.y) < bc.cfg.RobotRadius*2 {
			return false
		}
	}
	return true
}

// Tick runs the full 14-phase pipeline once and returns the resulting
// immutable snapshot, whether the round ended this tick, and — only
// when it did — the round's result.
func (bc *BattleController) Tick() (GameState, bool, *RoundResult) {
	if bc.battleOver || bc.roundOver {
		// The simulation only advances again after NextRound; ticking a
		// finished round must not re-run phase 13 and double-score it.
		return bc.snapshot(), bc.roundOver, nil
	}

	w := bc.world
	w.tick++
	w.events = w.events[:0]

	var result *RoundResult
	metrics.RecordTick(len(w.aliveRobots()), func() {
		phase0ResetIntents(w)
		phase1BulletMotion(w)
		phase2BulletRobotCollision(bc)
		phase3BulletBounds(w)
		phase4DeliverCallbacks(w)
		phase5AgentTick(w)
		phase6Movement(w)
		phase7RobotCollision(w)
		phase8DeathPropagation(w)
		phase9RadarScan(w)
		phase10Spawning(w)
		phase11Pickup(w)
		phase12FireIntents(w)

		result = phase13RoundEnd(bc)
	})

	for _, ev := range w.events {
		metrics.EventsTotal.WithLabelValues(string(ev.Type)).Inc()
	}

	state := bc.snapshot()
	if result != nil {
		bc.roundOver = true
		bc.roundResults = append(bc.roundResults, *result)
		if w.round+1 >= bc.cfg.RoundCount {
			bc.battleOver = true
		}
	}
	return state, bc.roundOver, result
}

// RunRound advances ticks until the current round ends or the battle
// is already over, returning the final snapshot of the round.
func (bc *BattleController) RunRound() GameState {
	var last GameState
	for !bc.roundOver && !bc.battleOver {
		last, _, _ = bc.Tick()
	}
	return last
}

// Run advances every remaining round to completion.
func (bc *BattleController) Run() []RoundResult {
	for !bc.battleOver {
		bc.RunRound()
		if bc.battleOver {
			break
		}
		bc.NextRound()
	}
	return bc.roundResults
}

// GetState returns the most recent snapshot without advancing the
// simulation.
func (bc *BattleController) GetState() GameState {
	return bc.snapshot()
}

// IsRoundOver reports whether the current round has ended.
func (bc *BattleController) IsRoundOver() bool { return bc.roundOver }

// IsBattleOver reports whether every configured round has completed.
func (bc *BattleController) IsBattleOver() bool { return bc.battleOver }

// NextRound resets world state for a fresh round while preserving each
// robot's cumulative score, per §4.5.
func (bc *BattleController) NextRound() {
	if bc.battleOver {
		return
	}
	w := bc.world
	w.round++
	w.bullets = nil
	w.mines = nil
	w.cookies = nil
	w.collidingPairs = make(map[[2]int]bool)
	w.events = nil
	bc.roundOver = false

	bc.placeRobots()
	for _, r := range w.robots {
		score := r.score
		r.resetForRound(bc.cfg, r.x, r.y)
		r.score = score
	}
	log.Printf("🏁 round %d starting", w.round+1)
}

// Destroy releases every agent exactly once; later calls are no-ops.
func (bc *BattleController) Destroy() {
	if bc.destroyed {
		return
	}
	bc.destroyed = true
	for _, h := range bc.hosts {
		h.destroy()
	}
}

func (bc *BattleController) snapshot() GameState {
	w := bc.world
	robots := make([]RobotState, len(w.robots))
	for i, r := range w.robots {
		robots[i] = r.toState()
	}
	bullets := make([]BulletState, len(w.bullets))
	for i, b := range w.bullets {
		bullets[i] = b.toState()
	}
	mines := make([]MineState, len(w.mines))
	for i, m := range w.mines {
		mines[i] = MineState{ID: m.id, X: m.x, Y: m.y}
	}
	cookies := make([]CookieState, len(w.cookies))
	for i, c := range w.cookies {
		cookies[i] = CookieState{ID: c.id, X: c.x, Y: c.y}
	}
	events := make([]Event, len(w.events))
	copy(events, w.events)

	reason := ""
	if len(bc.roundResults) > 0 {
		reason = bc.roundResults[len(bc.roundResults)-1].Reason
	}

	return GameState{
		Tick:        w.tick,
		Round:       w.round,
		Robots:      robots,
		Bullets:     bullets,
		Mines:       mines,
		Cookies:     cookies,
		Events:      events,
		RoundOver:   bc.roundOver,
		RoundReason: reason,
	}
}
