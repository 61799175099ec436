package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"robowar/internal/engine"
)

func (h *routerHandlers) handleBattleState(w http.ResponseWriter, r *http.Request) {
	if h.battle == nil {
		writeError(w, "no battle running", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, h.battle.GetState())
}

func (h *routerHandlers) handleTournamentStandings(w http.ResponseWriter, r *http.Request) {
	if h.tournament == nil {
		writeError(w, "no tournament running", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, h.tournament.Standings())
}

// createBattleRequest is the POSTed body for creating a battle; Config
// is unmarshaled over engine.Defaults() so callers may omit any field
// they want left at its reference value.
type createBattleRequest struct {
	Config engine.BattleConfig `json:"config"`
}

func (h *routerHandlers) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	if h.battleManager == nil {
		writeError(w, "battle creation is not enabled on this control plane", http.StatusServiceUnavailable)
		return
	}

	req := createBattleRequest{Config: engine.Defaults()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.battleManager.Create(req.Config)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"id": id})
}

func (h *routerHandlers) handleBattleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.battleManager == nil {
		writeError(w, "battle creation is not enabled on this control plane", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	record, ok := h.battleManager.Get(id)
	if !ok {
		writeError(w, "unknown battle id", http.StatusNotFound)
		return
	}
	writeJSON(w, record)
}

// createTournamentRequest is the POSTed body for creating a tournament.
type createTournamentRequest struct {
	Config   engine.BattleConfig `json:"config"`
	Games    int                 `json:"games"`
	BaseSeed uint32              `json:"baseSeed"`
}

func (h *routerHandlers) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	if h.tournamentManager == nil {
		writeError(w, "tournament creation is not enabled on this control plane", http.StatusServiceUnavailable)
		return
	}

	req := createTournamentRequest{Config: engine.Defaults(), Games: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Games <= 0 {
		req.Games = 1
	}

	id, err := h.tournamentManager.Create(req.Config, req.Games, req.BaseSeed)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"id": id})
}

func (h *routerHandlers) handleTournamentStandingsByID(w http.ResponseWriter, r *http.Request) {
	if h.tournamentManager == nil {
		writeError(w, "tournament creation is not enabled on this control plane", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	record, ok := h.tournamentManager.Get(id)
	if !ok {
		writeError(w, "unknown tournament id", http.StatusNotFound)
		return
	}
	writeJSON(w, record.Standings)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
