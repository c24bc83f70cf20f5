package summon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrCollaboratorUnavailable wraps any failure of the name registry, grade
// catalog or soldier store during a summon.
var ErrCollaboratorUnavailable = errors.New("summon collaborator unavailable")

// NameRegistry draws names from per-nationality pools.
// An empty string means the pool is empty.
type NameRegistry interface {
	DrawFirstName(ctx context.Context, nationality string) (string, error)
	DrawLastName(ctx context.Context, nationality string) (string, error)
}

// GradeInfo is what the engine needs from a grade record.
type GradeInfo struct {
	Pictogram *string
}

// GradeCatalog resolves grade metadata. Unknown grades return nil, nil.
type GradeCatalog interface {
	GradeInfo(ctx context.Context, grade string) (*GradeInfo, error)
}

// SoldierStore persists soldiers and the summon log.
type SoldierStore interface {
	SoldierExists(ctx context.Context, firstName, lastName string) (bool, error)
	// PersistSummon writes the soldier and its log entry atomically: on error
	// neither is stored. e.SoldierID is set from the new soldier.
	PersistSummon(ctx context.Context, s Soldier, e LogEntry) (Soldier, error)
}

// Collaborators groups the engine's external dependencies.
type Collaborators struct {
	Names    NameRegistry
	Grades   GradeCatalog
	Soldiers SoldierStore
}

// Soldier is a summoned unit. Rarete is the current tier; RaretePotentielle
// is the ceiling it may be upgraded to.
type Soldier struct {
	ID                int64     `json:"id,omitempty"`
	PlayerID          int64     `json:"playerId"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Nationality       string    `json:"nationality"`
	Grade             string    `json:"grade"`
	GradePictogram    *string   `json:"gradePictogram"`
	Rarete            Rarity    `json:"rarete"`
	RaretePotentielle Rarity    `json:"raretePotentielle"`
	Stats             Stats     `json:"stats"`
	CreatedAt         time.Time `json:"createdAt"`
}

// LogEntry records one summon event.
type LogEntry struct {
	ID        int64     `json:"id,omitempty"`
	Text      string    `json:"text"`
	Rarity    Rarity    `json:"rarity"`
	Grade     string    `json:"grade"`
	SoldierID int64     `json:"soldierId"`
	PlayerID  int64     `json:"playerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is a generated, not yet persisted soldier and its log line.
type Draft struct {
	Soldier Soldier
	LogText string
	Roll    Roll
	// UniqueName is false when the attempt budget ran out on collisions.
	UniqueName bool
}

// Engine generates soldiers from an immutable Config.
// An Engine is safe for concurrent use when its collaborators and its
// RandomSource are; NewSeededRNG sources are not.
type Engine struct {
	cfg      *Config
	names    NameRegistry
	grades   GradeCatalog
	soldiers SoldierStore
	rng      RandomSource

	Now    func() time.Time
	Logger *slog.Logger
}

// NewEngine validates cfg and wires the collaborators.
// If rng is nil the crypto-backed default is used.
func NewEngine(cfg *Config, c Collaborators, rng RandomSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Names == nil || c.Grades == nil || c.Soldiers == nil {
		return nil, fmt.Errorf("%w: missing collaborator", ErrConfiguration)
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Engine{
		cfg:      cfg,
		names:    c.Names,
		grades:   c.Grades,
		soldiers: c.Soldiers,
		rng:      rng,
		Now:      time.Now,
		Logger:   slog.Default(),
	}, nil
}

// Config returns the engine's balance table. Callers must not modify it.
func (e *Engine) Config() *Config { return e.cfg }

// Roll performs only the weighted draw (rarity, grade, cap).
func (e *Engine) Roll(level int) Roll {
	return roll(e.cfg, normalizeLevel(level), e.rng)
}

// Draft generates a soldier for playerID without persisting it.
// The only side effects are the registry, catalog and uniqueness lookups.
func (e *Engine) Draft(ctx context.Context, playerID int64, level int) (Draft, error) {
	level = normalizeLevel(level)
	r := roll(e.cfg, level, e.rng)

	info, err := e.grades.GradeInfo(ctx, r.Grade)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: grade %q: %w", ErrCollaboratorUnavailable, r.Grade, err)
	}
	var pictogram *string
	if info != nil {
		pictogram = info.Pictogram
	}

	id, err := e.drawIdentity(ctx)
	if err != nil {
		return Draft{}, err
	}

	s := Soldier{
		PlayerID:          playerID,
		FirstName:         id.FirstName,
		LastName:          id.LastName,
		Nationality:       id.Nationality,
		Grade:             r.Grade,
		GradePictogram:    pictogram,
		Rarete:            Commun,
		RaretePotentielle: r.Potential,
		Stats:             computeStats(e.cfg, r.Grade, r.Potential),
		CreatedAt:         e.Now(),
	}
	return Draft{
		Soldier:    s,
		LogText:    logText(s),
		Roll:       r,
		UniqueName: id.Unique,
	}, nil
}

// Summon drafts a soldier for playerID and persists it together with its
// log entry. On any collaborator failure nothing is stored or returned.
func (e *Engine) Summon(ctx context.Context, playerID int64, level int) (Soldier, error) {
	d, err := e.Draft(ctx, playerID, level)
	if err != nil {
		return Soldier{}, err
	}

	created, err := e.soldiers.PersistSummon(ctx, d.Soldier, LogEntry{
		Text:      d.LogText,
		Rarity:    d.Soldier.RaretePotentielle,
		Grade:     d.Soldier.Grade,
		PlayerID:  playerID,
		CreatedAt: d.Soldier.CreatedAt,
	})
	if err != nil {
		return Soldier{}, fmt.Errorf("%w: persist summon: %w", ErrCollaboratorUnavailable, err)
	}

	e.Logger.Info("soldier summoned",
		"player_id", playerID,
		"soldier_id", created.ID,
		"grade", created.Grade,
		"potential", created.RaretePotentielle,
		"drawn", d.Roll.Drawn,
		"unique_name", d.UniqueName)
	return created, nil
}

func logText(s Soldier) string {
	return fmt.Sprintf("%s %s (%s) a rejoint vos rangs, rareté potentielle %s",
		s.FirstName, s.LastName, s.Grade, s.RaretePotentielle)
}
