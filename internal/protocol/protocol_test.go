package protocol

import (
	"encoding/json"
	"reflect"
	"testing"

	"robowar/internal/engine"
	"robowar/internal/tournament"
)

// TestRunBatchCommandRoundTrip tests that a run_batch command survives
// a JSON encode/decode cycle intact, so a worker reconstructs exactly
// the batch it was asked to run.
func TestRunBatchCommandRoundTrip(t *testing.T) {
	cfg := engine.Defaults()
	cfg.Robots = []engine.RobotSpec{{Name: "alpha", Color: "#ff0000"}, {Name: "bravo", Color: "#00ff00"}}
	cfg.ScanRange = 400 // finite: JSON has no encoding for an unbounded range
	cfg.MasterSeed = 77

	cmd := RunBatchCommand{
		Type:          CommandRunBatch,
		Config:        cfg,
		AgentBinaries: [][]byte{{0x00, 0x61, 0x73, 0x6d}, {0x00, 0x61, 0x73, 0x6d, 0x01}},
		StartRound:    3,
		EndRound:      8,
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded RunBatchCommand
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, cmd) {
		t.Errorf("round trip diverged:\n%+v\nvs\n%+v", decoded, cmd)
	}
}

// TestGameStateRoundTrip tests the batch transport's serialization
// contract: a snapshot encoded to JSON and decoded back is deep-equal
// to the original, including its event list.
func TestGameStateRoundTrip(t *testing.T) {
	state := engine.GameState{
		Tick:  137,
		Round: 2,
		Robots: []engine.RobotState{
			{
				ID: 0, Name: "alpha", Color: "#ff0000",
				X: 123.456, Y: 78.9, Heading: 42.5, Speed: 37.25,
				GunHeading: 180, GunHeat: 0.7, RadarHeading: 271.125, ScanWidth: 10,
				Health: 61.5, Energy: 88.25, Alive: true, Score: 3,
				TicksSurvived: 137, DamageDealt: 24, DamageReceived: 38.5,
				BulletsFired: 6, BulletsHit: 4, Kills: 1,
			},
			{ID: 1, Name: "bravo", Health: 0, Alive: false, TicksSurvived: 90},
		},
		Bullets: []engine.BulletState{
			{ID: 3, OwnerID: 0, X: 300.5, Y: 200.25, Heading: 90, Speed: 14, Power: 2},
		},
		Mines:   []engine.MineState{{ID: 1, X: 50, Y: 60.5}},
		Cookies: []engine.CookieState{{ID: 2, X: 700.125, Y: 400}},
		Events: []engine.Event{
			{Type: engine.EventBulletFired, Tick: 137, RobotID: 0, BulletID: 3, X: 300.5, Y: 200.25},
			{Type: engine.EventRobotDied, Tick: 137, RobotID: 1, KillerID: 0, HasKiller: true},
		},
		RoundOver:   false,
		RoundReason: "",
	}

	data, err := json.Marshal(RoundResultEvent{
		Type: EventRoundResult,
		Result: tournament.GameResult{
			Index: 4,
			Seed:  81,
			Results: []engine.RoundResult{{
				Round:  2,
				Reason: "last_standing",
				Ranking: []engine.Placement{
					{RobotID: 0, Place: 1, Points: 3},
					{RobotID: 1, Place: 2, Points: 1},
				},
			}},
		},
	})
	if err != nil {
		t.Fatalf("marshal round_result: %v", err)
	}
	var decodedEvent RoundResultEvent
	if err := json.Unmarshal(data, &decodedEvent); err != nil {
		t.Fatalf("unmarshal round_result: %v", err)
	}
	if decodedEvent.Result.Results[0].Ranking[0].Points != 3 {
		t.Errorf("round_result ranking lost in transit: %+v", decodedEvent)
	}

	stateData, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var decoded engine.GameState
	if err := json.Unmarshal(stateData, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if !reflect.DeepEqual(decoded, state) {
		t.Errorf("snapshot round trip diverged:\n%+v\nvs\n%+v", decoded, state)
	}
}
