package engine_test

import (
	"math"
	"reflect"
	"testing"

	"robowar/internal/engine"
)

// wandererAgent drifts around the arena and fires opportunistically,
// pulling from the shared battle PRNG every tick so two identically
// seeded battles only stay identical if that draw sequence is
// reproduced exactly in robot-index order.
type wandererAgent struct {
	api *engine.API
}

func (a *wandererAgent) Init(api *engine.API) { a.api = api }
func (a *wandererAgent) Tick() {
	a.api.SetTurnRate(a.api.Random()*10 - 5)
	a.api.SetSpeed(40)
	a.api.SetGunTurnRate(a.api.Random()*20 - 10)
	a.api.SetRadarTurnRate(15)
	if a.api.Tick()%5 == 0 {
		a.api.Fire(2)
	}
}
func (a *wandererAgent) OnScan(distance, bearing float64) {}
func (a *wandererAgent) OnScanned(bearing float64)        {}
func (a *wandererAgent) OnHit(damage, bearing float64)    {}
func (a *wandererAgent) OnBulletHit(targetID int)         {}
func (a *wandererAgent) OnWallHit(bearing float64)        {}
func (a *wandererAgent) OnRobotHit(bearing float64)       {}
func (a *wandererAgent) OnBulletMiss()                    {}
func (a *wandererAgent) OnRobotDeath(robotID int)         {}
func (a *wandererAgent) Destroy()                         {}

func runWandererBattle(t *testing.T, cfg engine.BattleConfig) []engine.GameState {
	t.Helper()
	agents := make([]engine.Agent, len(cfg.Robots))
	for i := range agents {
		agents[i] = &wandererAgent{}
	}
	bc, err := engine.NewBattleController(cfg, agents)
	if err != nil {
		t.Fatalf("NewBattleController: %v", err)
	}
	defer bc.Destroy()

	var states []engine.GameState
	for i := 0; i < cfg.TicksPerRound; i++ {
		state, roundOver, _ := bc.Tick()
		states = append(states, state)
		if roundOver {
			break
		}
	}
	return states
}

// TestDeterminismSameSeed tests that two independent battles
// constructed with the same configuration and master seed produce a
// bit-identical sequence of snapshots, tick by tick.
func TestDeterminismSameSeed(t *testing.T) {
	cfg := engine.Defaults()
	cfg.Robots = []engine.RobotSpec{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	cfg.TicksPerRound = 150
	cfg.MasterSeed = 42

	statesA := runWandererBattle(t, cfg)
	statesB := runWandererBattle(t, cfg)

	if len(statesA) != len(statesB) {
		t.Fatalf("tick counts diverged: %d vs %d", len(statesA), len(statesB))
	}
	for i := range statesA {
		if !reflect.DeepEqual(statesA[i], statesB[i]) {
			t.Fatalf("snapshot at tick %d diverged:\n%+v\nvs\n%+v", i, statesA[i], statesB[i])
		}
	}
}

// TestDeterminismDifferentSeedDiverges tests that two battles seeded
// differently are not expected to produce identical snapshots — a
// sanity check that the determinism test above isn't trivially true of
// every battle regardless of seed.
func TestDeterminismDifferentSeedDiverges(t *testing.T) {
	cfgA := engine.Defaults()
	cfgA.Robots = []engine.RobotSpec{{Name: "a"}, {Name: "b"}}
	cfgA.TicksPerRound = 100
	cfgA.MasterSeed = 1

	cfgB := cfgA
	cfgB.MasterSeed = 2

	statesA := runWandererBattle(t, cfgA)
	statesB := runWandererBattle(t, cfgB)

	identical := len(statesA) == len(statesB)
	if identical {
		for i := range statesA {
			if !reflect.DeepEqual(statesA[i], statesB[i]) {
				identical = false
				break
			}
		}
	}
	if identical {
		t.Fatal("expected different seeds to produce different snapshot sequences")
	}
}

// stationaryAgent never moves or turns its body, so its position stays
// fixed at wherever the battle spawned it.
type stationaryAgent struct {
	api *engine.API
}

func (a *stationaryAgent) Init(api *engine.API)             {}
func (a *stationaryAgent) Tick()                            {}
func (a *stationaryAgent) OnScan(distance, bearing float64) {}
func (a *stationaryAgent) OnScanned(bearing float64)        {}
func (a *stationaryAgent) OnHit(damage, bearing float64)    {}
func (a *stationaryAgent) OnBulletHit(targetID int)         {}
func (a *stationaryAgent) OnWallHit(bearing float64)        {}
func (a *stationaryAgent) OnRobotHit(bearing float64)       {}
func (a *stationaryAgent) OnBulletMiss()                    {}
func (a *stationaryAgent) OnRobotDeath(robotID int)         {}
func (a *stationaryAgent) Destroy()                         {}

// sweepingRadarAgent spins its radar at the maximum rate every tick and
// records every detection reported back to it.
type sweepingRadarAgent struct {
	api   *engine.API
	scans []scanHit
}

type scanHit struct {
	tick     uint64
	distance float64
	bearing  float64
}

func (a *sweepingRadarAgent) Init(api *engine.API) { a.api = api }
func (a *sweepingRadarAgent) Tick()                { a.api.SetRadarTurnRate(999) } // clamped to the configured max turn rate
func (a *sweepingRadarAgent) OnScan(distance, bearing float64) {
	a.scans = append(a.scans, scanHit{tick: a.api.Tick(), distance: distance, bearing: bearing})
}
func (a *sweepingRadarAgent) OnScanned(bearing float64)     {}
func (a *sweepingRadarAgent) OnHit(damage, bearing float64) {}
func (a *sweepingRadarAgent) OnBulletHit(targetID int)      {}
func (a *sweepingRadarAgent) OnWallHit(bearing float64)     {}
func (a *sweepingRadarAgent) OnRobotHit(bearing float64)    {}
func (a *sweepingRadarAgent) OnBulletMiss()                 {}
func (a *sweepingRadarAgent) OnRobotDeath(robotID int)      {}
func (a *sweepingRadarAgent) Destroy()                      {}

// TestRadarHitWithinFullSweep tests that a continuously sweeping radar
// detects a stationary target within one full rotation (8 ticks at the
// default 45 deg/tick max turn rate, comfortably inside the 20-tick
// budget the detection contract allows), and that the reported
// distance matches the robots' actual separation.
func TestRadarHitWithinFullSweep(t *testing.T) {
	cfg := engine.Defaults()
	cfg.Robots = []engine.RobotSpec{{Name: "scanner"}, {Name: "target"}}
	cfg.TicksPerRound = 20

	scanner := &sweepingRadarAgent{}
	target := &stationaryAgent{}
	bc, err := engine.NewBattleController(cfg, []engine.Agent{scanner, target})
	if err != nil {
		t.Fatalf("NewBattleController: %v", err)
	}
	defer bc.Destroy()

	var finalState engine.GameState
	for i := 0; i < 20; i++ {
		finalState, _, _ = bc.Tick()
	}

	if len(scanner.scans) == 0 {
		t.Fatal("expected at least one scan detection within 20 ticks")
	}
	if scanner.scans[0].tick > 20 {
		t.Errorf("first detection at tick %d, want within 20", scanner.scans[0].tick)
	}

	scannerState, targetState := finalState.Robots[0], finalState.Robots[1]
	wantDist := math.Hypot(targetState.X-scannerState.X, targetState.Y-scannerState.Y)
	if diff := math.Abs(scanner.scans[0].distance - wantDist); diff > 1e-6 {
		t.Errorf("reported scan distance = %v, want %v", scanner.scans[0].distance, wantDist)
	}
}
