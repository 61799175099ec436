package engine

import (
	"sort"

	"robowar/internal/engine/spatial"
	"robowar/internal/prng"
)

// World is the single mutable arena the controller owns exclusively
// during a tick. Every collection is iterated in ascending stable-id
// order; nothing here is ever exposed outside the engine package.
type World struct {
	cfg BattleConfig
	rng *prng.Source

	tick  uint64
	round int

	robots  []*robot
	bullets []*bullet
	mines   []*mine
	cookies []*cookie

	nextBulletID int
	nextMineID   int
	nextCookieID int

	// collidingPairs remembers which robot-robot pairs (canonicalized
	// by canonPair as [lowerID, higherID]) were already overlapping
	// last tick, so ram damage applies once per contact, not once per
	// tick of continued contact.
	collidingPairs map[[2]int]bool

	events []Event

	faultCount int

	grid *spatial.Grid
}

func newWorld(cfg BattleConfig, seed uint32) *World {
	cellSize := cfg.RobotRadius * 4
	if cellSize <= 0 {
		cellSize = 64
	}
	w := &World{
		cfg:            cfg,
		rng:            prng.New(seed),
		collidingPairs: make(map[[2]int]bool),
		grid:           spatial.NewGrid(cfg.ArenaWidth, cfg.ArenaHeight, cellSize),
	}
	return w
}

// rebuildGrid re-indexes every alive robot's current position. Called
// at the start of each phase that queries the grid (Phase 7 always,
// Phase 9 again when scan range is finite); the grid's own bucket
// order is never treated as canonical — candidate ids pulled from it
// are always sorted ascending before the pipeline processes them.
func (w *World) rebuildGrid() {
	w.grid.Clear()
	for _, r := range w.robots {
		if r.alive {
			w.grid.Insert(r.id, r.x, r.y)
		}
	}
}

// sortedCandidates copies a grid query result and sorts it ascending,
// so a cell's internal insertion order never becomes observable.
func sortedCandidates(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.Ints(out)
	return out
}

func (w *World) robotByID(id int) *robot {
	for _, r := range w.robots {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (w *World) emit(ev Event) {
	ev.Tick = w.tick
	w.events = append(w.events, ev)
}

func (w *World) aliveRobots() []*robot {
	out := make([]*robot, 0, len(w.robots))
	for _, r := range w.robots {
		if r.alive {
			out = append(out, r)
		}
	}
	return out
}

func canonPair(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
