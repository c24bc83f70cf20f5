package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xtding233/summon-backend/internal/store"
	"github.com/xtding233/summon-backend/internal/summon"
)

// Query limits.
const (
	maxSimTrials   = 100_000
	maxMCTrials    = 10_000
	maxMCDraws     = 2_000_000
	maxLogsLimit   = 500
	maxRequestBody = 1 << 20
)

var errBadRequest = errors.New("bad request")

type errorResp struct {
	Error string `json:"error"`
}

type summonReq struct {
	Level *int `json:"level,omitempty"`
}

type experienceReq struct {
	XP int64 `json:"xp"`
}

type configResp struct {
	Version string `json:"version"`
	Season  string `json:"season,omitempty"`
}

type simulateResp struct {
	Distribution summon.Distribution `json:"distribution"`
	Target       summon.Rarity       `json:"target,omitempty"`
	Summons      *summon.SimStats    `json:"summonsToTarget,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, summon.ErrTargetUnreachable), errors.Is(err, summon.ErrDrawBudgetExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, summon.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable
	default:
		// summon.ErrConfiguration included
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.loggerFrom(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResp{Error: err.Error()})
}

func parseInt(r *http.Request, key string) (int, bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, badRequest("invalid %s", key)
	}
	return n, true, nil
}

func playerID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("playerID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid player id %q", r.PathValue("playerID"))
	}
	return id, nil
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("invalid body: %v", err)
	}
	return nil
}

func (s *Server) handleSummon(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req summonReq
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	level := 0
	if req.Level != nil {
		level = *req.Level
	} else if level, err = s.store.CharacterLevel(r.Context(), pid); err != nil {
		s.fail(w, r, fmt.Errorf("%w: character level: %w", summon.ErrCollaboratorUnavailable, err))
		return
	}

	sol, err := s.engines.Engine().Summon(r.Context(), pid, level)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sol)
}

func (s *Server) handleListSoldiers(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.store.ListSoldiers(r.Context(), pid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGrantExperience(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req experienceReq
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.XP <= 0 {
		s.fail(w, r, badRequest("xp must be > 0"))
		return
	}
	c, err := s.store.GrantExperience(r.Context(), pid, req.XP)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSummonLogs(w http.ResponseWriter, r *http.Request) {
	player, _, err := parseInt(r, "player")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, _, err := parseInt(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if limit < 0 || limit > maxLogsLimit {
		s.fail(w, r, badRequest("limit must be within [0,%d]", maxLogsLimit))
		return
	}
	logs, err := s.store.ListSummonLogs(r.Context(), int64(player), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	level, ok, err := parseInt(r, "level")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		level = 1
	}
	writeJSON(w, http.StatusOK, summon.ComputeOdds(s.engines.Engine().Config(), level))
}

// handleSimulate runs a Monte Carlo over the weighted draw only; nothing is persisted.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	level, ok, err := parseInt(r, "level")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		level = 1
	}
	trials, ok, err := parseInt(r, "trials")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		trials = 10_000
	}
	if trials <= 0 || trials > maxSimTrials {
		s.fail(w, r, badRequest("trials must be within [1,%d]", maxSimTrials))
		return
	}

	cfg := s.engines.Engine().Config()
	rng := summon.DefaultRNG()
	dist, err := summon.SimulateRarities(cfg, level, trials, rng)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := simulateResp{Distribution: dist}

	if t := strings.TrimSpace(r.URL.Query().Get("target")); t != "" {
		target := summon.Rarity(strings.ToUpper(t))
		if !target.Valid() {
			s.fail(w, r, badRequest("unknown rarity %q", t))
			return
		}
		st, err := summon.RunMonteCarlo(r.Context(), cfg, level, target, min(trials, maxMCTrials), maxMCDraws, rng)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp.Target = target
		resp.Summons = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListGrades(w http.ResponseWriter, r *http.Request) {
	grades, err := s.store.ListGrades(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grades)
}

func (s *Server) handleCreateGrade(w http.ResponseWriter, r *http.Request) {
	var g store.Grade
	if err := decodeBody(r, &g); err != nil {
		s.fail(w, r, err)
		return
	}
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		s.fail(w, r, badRequest("grade name is required"))
		return
	}
	created, err := s.store.CreateGrade(r.Context(), g)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpsertGrade(w http.ResponseWriter, r *http.Request) {
	var g store.Grade
	if err := decodeBody(r, &g); err != nil {
		s.fail(w, r, err)
		return
	}
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.fail(w, r, badRequest("grade name is required"))
		return
	}
	g.Name = name
	if err := s.store.UpsertGrade(r.Context(), g); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGrade(r.Context(), r.PathValue("name")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleXPCurve(w http.ResponseWriter, r *http.Request) {
	curve, err := s.store.XPCurve(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, curve)
}

func (s *Server) handleConfigInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResp{Version: s.engines.Version(), Season: s.engines.Season()})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.engines.Reload(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configResp{Version: s.engines.Version(), Season: s.engines.Season()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
