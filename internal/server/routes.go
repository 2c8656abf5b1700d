package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"synaptic/internal/engine"
)

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Terms   []string `json:"terms"`
		Trigger string   `json:"trigger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, "terms required")
		return
	}
	if req.Trigger == "" {
		req.Trigger = engine.TriggerText(req.Terms)
	}
	s.touch()

	result, err := s.eng.Activate(req.Terms, req.Trigger, s.eng.Chem.GraphParams())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Terms      []string `json:"terms"`
		Plasticity float64  `json:"plasticity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, "terms required")
		return
	}
	if req.Plasticity == 0 {
		req.Plasticity = s.eng.Chem.GraphParams().Plasticity
	}
	s.touch()

	touched, err := s.eng.HebbianLearn(req.Terms, req.Plasticity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"synapses_touched": touched})
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Terms   []string `json:"terms"`
		Trigger string   `json:"trigger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, "terms required")
		return
	}
	if req.Trigger == "" {
		req.Trigger = engine.TriggerText(req.Terms)
	}
	s.touch()

	text, answered, err := s.eng.Respond(req.Terms, req.Trigger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"text":     text,
		"answered": answered,
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.touch()

	s.eng.Feedback(req.Score)
	writeJSON(w, http.StatusOK, s.eng.Chem.Snapshot())
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Rate == 0 {
		req.Rate = engine.DefaultDecayRate
	}

	pruned, err := s.eng.Decay(req.Rate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"synapses_pruned": pruned})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GraphStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleChemistry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Chem.Snapshot())
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	limit := queryInt(r, "limit", 10)

	conns, err := s.db.StrongestConnections(label, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"label":       label,
		"connections": conns,
	})
}

func (s *Server) handleThoughts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	thoughts := []engine.Thought{}
	if s.wanderer != nil {
		thoughts = s.wanderer.Thoughts(limit)
	}
	writeJSON(w, http.StatusOK, thoughts)
}

func (s *Server) handleActivations(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)

	entries, err := s.db.RecentActivations(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
