// Package server exposes the summon engine and its reference data over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/xtding233/summon-backend/internal/leveling"
	"github.com/xtding233/summon-backend/internal/store"
	"github.com/xtding233/summon-backend/internal/summon"
)

// Engines yields the engine in service and reloads it on demand.
type Engines interface {
	Engine() *summon.Engine
	Reload() error
	Version() string
	Season() string
}

// Store is the persistence the HTTP API reads besides the engine's own collaborators.
type Store interface {
	Ping(ctx context.Context) error
	CharacterLevel(ctx context.Context, playerID int64) (int, error)
	GrantExperience(ctx context.Context, playerID, xp int64) (store.Character, error)
	ListSoldiers(ctx context.Context, playerID int64) ([]summon.Soldier, error)
	ListSummonLogs(ctx context.Context, playerID int64, limit int) ([]summon.LogEntry, error)
	ListGrades(ctx context.Context) ([]store.Grade, error)
	CreateGrade(ctx context.Context, g store.Grade) (store.Grade, error)
	UpsertGrade(ctx context.Context, g store.Grade) error
	DeleteGrade(ctx context.Context, name string) error
	XPCurve(ctx context.Context) ([]leveling.Step, error)
}

// Server holds the HTTP handlers.
type Server struct {
	engines Engines
	store   Store
	log     *slog.Logger
}

// New creates the HTTP API. A nil logger means slog.Default().
func New(engines Engines, st Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engines: engines, store: st, log: log}
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/players/{playerID}/summon", s.handleSummon)
	mux.HandleFunc("GET /api/players/{playerID}/soldiers", s.handleListSoldiers)
	mux.HandleFunc("POST /api/players/{playerID}/experience", s.handleGrantExperience)
	mux.HandleFunc("GET /api/summon-logs", s.handleSummonLogs)
	mux.HandleFunc("GET /api/summon/odds", s.handleOdds)
	mux.HandleFunc("GET /api/summon/simulate", s.handleSimulate)

	mux.HandleFunc("GET /api/grades", s.handleListGrades)
	mux.HandleFunc("POST /api/grades", s.handleCreateGrade)
	mux.HandleFunc("PUT /api/grades/{name}", s.handleUpsertGrade)
	mux.HandleFunc("DELETE /api/grades/{name}", s.handleDeleteGrade)
	mux.HandleFunc("GET /api/xp-curve", s.handleXPCurve)

	mux.HandleFunc("GET /api/config", s.handleConfigInfo)
	mux.HandleFunc("POST /api/config/reload", s.handleReload)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestID(s.withRecover(mux))
}
