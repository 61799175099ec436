package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"robowar/internal/engine"
	"robowar/internal/tournament"
)

// mockBattleView implements BattleView for tests that don't need a
// real running battle.
type mockBattleView struct {
	state      engine.GameState
	battleOver bool
}

func (m *mockBattleView) GetState() engine.GameState { return m.state }
func (m *mockBattleView) IsBattleOver() bool         { return m.battleOver }

// mockTournamentView implements TournamentView.
type mockTournamentView struct {
	standings []tournament.Standing
}

func (m *mockTournamentView) Standings() []tournament.Standing { return m.standings }

// noopAgent satisfies engine.Agent without doing anything, used to
// seat battles/tournaments created over the control plane in tests.
type noopAgent struct{}

func (noopAgent) Init(api *engine.API)             {}
func (noopAgent) Tick()                            {}
func (noopAgent) OnScan(distance, bearing float64) {}
func (noopAgent) OnScanned(bearing float64)        {}
func (noopAgent) OnHit(damage, bearing float64)    {}
func (noopAgent) OnBulletHit(targetID int)         {}
func (noopAgent) OnWallHit(bearing float64)        {}
func (noopAgent) OnRobotHit(bearing float64)       {}
func (noopAgent) OnBulletMiss()                    {}
func (noopAgent) OnRobotDeath(robotID int)         {}
func (noopAgent) Destroy()                         {}

func noopAgentFactory(spec engine.RobotSpec, index int) engine.Agent { return noopAgent{} }

// TestHandleBattleStateNoBattle tests the 503 reported when no battle
// view is wired.
func TestHandleBattleStateNoBattle(t *testing.T) {
	router := NewRouter(RouterConfig{DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/battle/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

// TestHandleBattleState tests that a wired battle view's state is
// serialized as JSON.
func TestHandleBattleState(t *testing.T) {
	view := &mockBattleView{state: engine.GameState{Tick: 42, Round: 1}}
	router := NewRouter(RouterConfig{Battle: view, DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/battle/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got engine.GameState
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tick != 42 || got.Round != 1 {
		t.Errorf("got %+v, want Tick=42 Round=1", got)
	}
}

// TestHandleTournamentStandings tests that a wired tournament view's
// standings are serialized as JSON.
func TestHandleTournamentStandings(t *testing.T) {
	view := &mockTournamentView{standings: []tournament.Standing{{RosterID: "alpha", Points: 3, Wins: 1}}}
	router := NewRouter(RouterConfig{Tournament: view, DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/tournament/standings")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var got []tournament.Standing
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].RosterID != "alpha" {
		t.Errorf("got %+v", got)
	}
}

// TestCreateBattleAndFetchSnapshot tests the POST /battles, GET
// /battles/{id}/snapshot round trip end to end against a real engine.
func TestCreateBattleAndFetchSnapshot(t *testing.T) {
	battles := NewBattleManager(noopAgentFactory)
	router := NewRouter(RouterConfig{BattleManager: battles, DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	cfg := engine.Defaults()
	cfg.Robots = []engine.RobotSpec{{Name: "alpha"}, {Name: "bravo"}}
	cfg.TicksPerRound = 5
	cfg.ScanRange = 400 // finite: JSON has no encoding for an unbounded range
	body, _ := json.Marshal(createBattleRequest{Config: cfg})

	resp, err := http.Post(ts.URL+"/api/battles", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/battles: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := created["id"]
	if id == "" {
		t.Fatal("expected a non-empty battle id")
	}

	snapResp, err := http.Get(fmt.Sprintf("%s/api/battles/%s/snapshot", ts.URL, id))
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer snapResp.Body.Close()
	if snapResp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot status = %d, want 200", snapResp.StatusCode)
	}
	var record BattleRecord
	if err := json.NewDecoder(snapResp.Body).Decode(&record); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !record.Done || len(record.Results) == 0 {
		t.Errorf("expected a completed battle with at least one round result, got %+v", record)
	}
}

// TestFetchUnknownBattleSnapshot tests the 404 for an unrecognized id.
func TestFetchUnknownBattleSnapshot(t *testing.T) {
	battles := NewBattleManager(noopAgentFactory)
	router := NewRouter(RouterConfig{BattleManager: battles, DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/battles/nonexistent/snapshot")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

// TestCreateTournamentAndFetchStandings tests the POST /tournaments,
// GET /tournaments/{id}/standings round trip end to end.
func TestCreateTournamentAndFetchStandings(t *testing.T) {
	tournaments := NewTournamentManager(noopAgentFactory)
	router := NewRouter(RouterConfig{TournamentManager: tournaments, DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	cfg := engine.Defaults()
	cfg.Robots = []engine.RobotSpec{{Name: "alpha"}, {Name: "bravo"}}
	cfg.TicksPerRound = 5
	cfg.ScanRange = 400 // finite: JSON has no encoding for an unbounded range
	body, _ := json.Marshal(createTournamentRequest{Config: cfg, Games: 3, BaseSeed: 10})

	resp, err := http.Post(ts.URL+"/api/tournaments", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/tournaments: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	standingsResp, err := http.Get(fmt.Sprintf("%s/api/tournaments/%s/standings", ts.URL, created["id"]))
	if err != nil {
		t.Fatalf("GET standings: %v", err)
	}
	defer standingsResp.Body.Close()
	if standingsResp.StatusCode != http.StatusOK {
		t.Fatalf("standings status = %d, want 200", standingsResp.StatusCode)
	}
	var standings []tournament.Standing
	if err := json.NewDecoder(standingsResp.Body).Decode(&standings); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(standings) != 2 {
		t.Errorf("expected standings for 2 entrants, got %d", len(standings))
	}
}

// TestCreateBattleUnavailableWithoutManager tests the 503 reported
// when the control plane hasn't been wired with a BattleManager.
func TestCreateBattleUnavailableWithoutManager(t *testing.T) {
	router := NewRouter(RouterConfig{DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/battles", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
