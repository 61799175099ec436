package tournament

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"robowar/internal/engine"
)

// idleAgent never moves, turns, or fires; in a two-robot idle battle
// every game ends in a time_limit tie, broken by robot index, so the
// first entrant wins every single game deterministically.
type idleAgent struct{}

func (idleAgent) Init(api *engine.API)             {}
func (idleAgent) Tick()                            {}
func (idleAgent) OnScan(distance, bearing float64) {}
func (idleAgent) OnScanned(bearing float64)        {}
func (idleAgent) OnHit(damage, bearing float64)    {}
func (idleAgent) OnBulletHit(targetID int)         {}
func (idleAgent) OnWallHit(bearing float64)        {}
func (idleAgent) OnRobotHit(bearing float64)       {}
func (idleAgent) OnBulletMiss()                    {}
func (idleAgent) OnRobotDeath(robotID int)         {}
func (idleAgent) Destroy()                         {}

func idleTournamentConfig(games int) (engine.BattleConfig, []Entrant) {
	cfg := engine.Defaults()
	cfg.Robots = []engine.RobotSpec{{Name: "alpha"}, {Name: "bravo"}}
	cfg.TicksPerRound = 10
	entrants := []Entrant{
		{RosterID: "alpha", Build: func(string) engine.Agent { return idleAgent{} }},
		{RosterID: "bravo", Build: func(string) engine.Agent { return idleAgent{} }},
	}
	return cfg, entrants
}

func TestTournamentRunAccumulatesStandings(t *testing.T) {
	Convey("Given a tournament of idle robots over several games", t, func() {
		cfg, entrants := idleTournamentConfig(5)
		tour := New(cfg, entrants, 5, 7)

		Convey("When Run is called with no abort signal", func() {
			results, err := tour.Run(nil, nil)

			Convey("It should play every game without error", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 5)
			})

			Convey("It should rank the tie-broken winner first every game", func() {
				standings := tour.Standings()
				So(len(standings), ShouldEqual, 2)
				So(standings[0].RosterID, ShouldEqual, "alpha")
				So(standings[0].Points, ShouldEqual, cfg.PlacementPoints[0]*5)
				So(standings[0].Wins, ShouldEqual, 5)
			})
		})
	})
}

func TestTournamentRunAbort(t *testing.T) {
	Convey("Given a tournament and an abort signal that fires immediately", t, func() {
		cfg, entrants := idleTournamentConfig(3)
		tour := New(cfg, entrants, 3, 1)

		Convey("When Run is called", func() {
			calls := 0
			results, err := tour.Run(func() bool { calls++; return true }, nil)

			Convey("It should stop before playing any game", func() {
				So(err, ShouldEqual, engine.ErrTournamentAborted)
				So(len(results), ShouldEqual, 0)
				So(calls, ShouldEqual, 1)
			})
		})
	})
}

func TestTournamentRunOnGameCompleteCallback(t *testing.T) {
	Convey("Given a tournament with an onGameComplete callback", t, func() {
		cfg, entrants := idleTournamentConfig(3)
		tour := New(cfg, entrants, 3, 100)

		Convey("When Run completes", func() {
			var seenIndexes []int
			_, err := tour.Run(nil, func(r GameResult) { seenIndexes = append(seenIndexes, r.Index) })

			Convey("It should have invoked the callback once per game in order", func() {
				So(err, ShouldBeNil)
				So(seenIndexes, ShouldResemble, []int{0, 1, 2})
			})
		})
	})
}

func TestTournamentRunParallelMatchesSequentialStandings(t *testing.T) {
	Convey("Given the same tournament run sequentially and in parallel", t, func() {
		cfg, entrants := idleTournamentConfig(6)
		sequential := New(cfg, entrants, 6, 55)
		parallel := New(cfg, entrants, 6, 55)

		seqResults, seqErr := sequential.Run(nil, nil)
		parResults, parErr := parallel.RunParallel(context.Background(), 3)

		Convey("Both should complete every game without error", func() {
			So(seqErr, ShouldBeNil)
			So(parErr, ShouldBeNil)
			So(len(seqResults), ShouldEqual, 6)
			So(len(parResults), ShouldEqual, 6)
		})

		Convey("Both should settle on identical standings despite concurrent scheduling", func() {
			seqStandings := sequential.Standings()
			parStandings := parallel.Standings()
			So(parStandings, ShouldResemble, seqStandings)
		})
	})
}
