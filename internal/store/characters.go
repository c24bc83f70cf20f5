package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xtding233/summon-backend/internal/leveling"
)

// Character is the player state the summon depends on.
type Character struct {
	PlayerID   int64 `json:"playerId"`
	Level      int   `json:"level"`
	Experience int64 `json:"experience"`
}

// CharacterLevel returns the player's level, 1 when the player has no row.
func (s *Store) CharacterLevel(ctx context.Context, playerID int64) (int, error) {
	c, err := s.GetCharacter(ctx, playerID)
	if errors.Is(err, ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Level, nil
}

// GetCharacter returns the player's character or ErrNotFound.
func (s *Store) GetCharacter(ctx context.Context, playerID int64) (Character, error) {
	return s.getCharacter(ctx, s.db, playerID)
}

func (s *Store) getCharacter(ctx context.Context, x dbtx, playerID int64) (Character, error) {
	c := Character{PlayerID: playerID}
	err := x.QueryRowContext(ctx,
		s.q(`SELECT level, experience FROM characters WHERE player_id = ?`), playerID,
	).Scan(&c.Level, &c.Experience)
	if errors.Is(err, sql.ErrNoRows) {
		return Character{}, fmt.Errorf("character %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return Character{}, fmt.Errorf("querying character %d: %w", playerID, err)
	}
	return c, nil
}

// SaveCharacter creates or replaces the character row.
func (s *Store) SaveCharacter(ctx context.Context, c Character) error {
	return s.saveCharacter(ctx, s.db, c)
}

func (s *Store) saveCharacter(ctx context.Context, x dbtx, c Character) error {
	if c.Level < 1 {
		c.Level = 1
	}
	_, err := x.ExecContext(ctx, s.q(
		`INSERT INTO characters (player_id, level, experience) VALUES (?, ?, ?)
		 ON CONFLICT (player_id) DO UPDATE SET level = excluded.level, experience = excluded.experience`),
		c.PlayerID, c.Level, c.Experience,
	)
	if err != nil {
		return fmt.Errorf("saving character %d: %w", c.PlayerID, err)
	}
	return nil
}

// GrantExperience adds xp to the player and recomputes the level from the
// stored XP curve. The level never drops below its current value.
func (s *Store) GrantExperience(ctx context.Context, playerID, xp int64) (Character, error) {
	if xp < 0 {
		return Character{}, fmt.Errorf("experience must be >= 0, got %d", xp)
	}
	var out Character
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := s.getCharacter(ctx, tx, playerID)
		if errors.Is(err, ErrNotFound) {
			c = Character{PlayerID: playerID, Level: 1}
		} else if err != nil {
			return err
		}
		curve, err := s.xpCurve(ctx, tx)
		if err != nil {
			return err
		}
		c.Experience += xp
		if lvl := leveling.LevelForXP(curve, c.Experience); lvl > c.Level {
			c.Level = lvl
		}
		out = c
		return s.saveCharacter(ctx, tx, c)
	})
	return out, err
}

// ReplaceXPCurve swaps the whole level_xp table.
func (s *Store) ReplaceXPCurve(ctx context.Context, curve []leveling.Step) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.replaceXPCurve(ctx, tx, curve)
	})
}

func (s *Store) replaceXPCurve(ctx context.Context, x dbtx, curve []leveling.Step) error {
	if _, err := x.ExecContext(ctx, `DELETE FROM level_xp`); err != nil {
		return fmt.Errorf("clearing xp curve: %w", err)
	}
	for _, st := range curve {
		if _, err := x.ExecContext(ctx,
			s.q(`INSERT INTO level_xp (level, xp_required) VALUES (?, ?)`), st.Level, st.XPRequired,
		); err != nil {
			return fmt.Errorf("inserting level %d: %w", st.Level, err)
		}
	}
	return nil
}

// XPCurve returns the stored curve ordered by level.
func (s *Store) XPCurve(ctx context.Context) ([]leveling.Step, error) {
	return s.xpCurve(ctx, s.db)
}

func (s *Store) xpCurve(ctx context.Context, x dbtx) ([]leveling.Step, error) {
	rows, err := x.QueryContext(ctx, `SELECT level, xp_required FROM level_xp ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("querying xp curve: %w", err)
	}
	defer rows.Close()
	out := []leveling.Step{}
	for rows.Next() {
		var st leveling.Step
		if err := rows.Scan(&st.Level, &st.XPRequired); err != nil {
			return nil, fmt.Errorf("scanning xp curve: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
