package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xtding233/summon-backend/internal/summon"
)

const soldierColumns = `id, player_id, first_name, last_name, nationality, grade, grade_pictogram,
	rarete, rarete_potentielle, health, attack, force, constitution, dexterity,
	intelligence, speed, resistance, precision, created_at`

// SoldierExists reports whether any soldier already carries this full name.
func (s *Store) SoldierExists(ctx context.Context, firstName, lastName string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(*) FROM soldiers WHERE first_name = ? AND last_name = ?`),
		firstName, lastName,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking soldier name: %w", err)
	}
	return n > 0, nil
}

// CreateSoldier inserts sol and returns it with its id.
func (s *Store) CreateSoldier(ctx context.Context, sol summon.Soldier) (summon.Soldier, error) {
	return s.createSoldier(ctx, s.db, sol)
}

// AppendSummonLog records a summon event.
func (s *Store) AppendSummonLog(ctx context.Context, e summon.LogEntry) (summon.LogEntry, error) {
	return s.appendSummonLog(ctx, s.db, e)
}

// PersistSummon inserts the soldier and its log entry in one transaction.
func (s *Store) PersistSummon(ctx context.Context, sol summon.Soldier, e summon.LogEntry) (summon.Soldier, error) {
	var created summon.Soldier
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if created, err = s.createSoldier(ctx, tx, sol); err != nil {
			return err
		}
		e.SoldierID = created.ID
		_, err = s.appendSummonLog(ctx, tx, e)
		return err
	})
	if err != nil {
		return summon.Soldier{}, err
	}
	return created, nil
}

func (s *Store) createSoldier(ctx context.Context, x dbtx, sol summon.Soldier) (summon.Soldier, error) {
	if sol.CreatedAt.IsZero() {
		sol.CreatedAt = time.Now()
	}
	sol.CreatedAt = sol.CreatedAt.UTC()
	st := sol.Stats
	id, err := s.insertID(ctx, x,
		`INSERT INTO soldiers (player_id, first_name, last_name, nationality, grade, grade_pictogram,
			rarete, rarete_potentielle, health, attack, force, constitution, dexterity,
			intelligence, speed, resistance, precision, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sol.PlayerID, sol.FirstName, sol.LastName, sol.Nationality, sol.Grade, nullString(sol.GradePictogram),
		string(sol.Rarete), string(sol.RaretePotentielle),
		st[summon.StatHealth], st[summon.StatAttack], st[summon.StatForce], st[summon.StatConstitution],
		st[summon.StatDexterity], st[summon.StatIntelligence], st[summon.StatSpeed],
		st[summon.StatResistance], st[summon.StatPrecision],
		sol.CreatedAt,
	)
	if err != nil {
		return summon.Soldier{}, fmt.Errorf("inserting soldier: %w", err)
	}
	sol.ID = id
	return sol, nil
}

func (s *Store) appendSummonLog(ctx context.Context, x dbtx, e summon.LogEntry) (summon.LogEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	var soldierID sql.NullInt64
	if e.SoldierID != 0 {
		soldierID = sql.NullInt64{Int64: e.SoldierID, Valid: true}
	}
	id, err := s.insertID(ctx, x,
		`INSERT INTO summon_logs (player_id, soldier_id, text, rarity, grade, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.PlayerID, soldierID, e.Text, string(e.Rarity), e.Grade, e.CreatedAt,
	)
	if err != nil {
		return summon.LogEntry{}, fmt.Errorf("inserting summon log: %w", err)
	}
	e.ID = id
	return e, nil
}

// GetSoldier returns one soldier or ErrNotFound.
func (s *Store) GetSoldier(ctx context.Context, id int64) (summon.Soldier, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+soldierColumns+` FROM soldiers WHERE id = ?`), id)
	if err != nil {
		return summon.Soldier{}, fmt.Errorf("querying soldier %d: %w", id, err)
	}
	list, err := scanSoldiers(rows)
	if err != nil {
		return summon.Soldier{}, err
	}
	if len(list) == 0 {
		return summon.Soldier{}, fmt.Errorf("soldier %d: %w", id, ErrNotFound)
	}
	return list[0], nil
}

// ListSoldiers returns a player's soldiers, oldest first.
func (s *Store) ListSoldiers(ctx context.Context, playerID int64) ([]summon.Soldier, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+soldierColumns+` FROM soldiers WHERE player_id = ? ORDER BY id`), playerID)
	if err != nil {
		return nil, fmt.Errorf("listing soldiers: %w", err)
	}
	return scanSoldiers(rows)
}

func scanSoldiers(rows *sql.Rows) ([]summon.Soldier, error) {
	defer rows.Close()
	out := []summon.Soldier{}
	for rows.Next() {
		var (
			sol                           summon.Soldier
			picto                         sql.NullString
			rarete, potentielle           string
			hp, atk, frc, con, dex, intel int
			spd, res, prec                int
		)
		if err := rows.Scan(&sol.ID, &sol.PlayerID, &sol.FirstName, &sol.LastName, &sol.Nationality,
			&sol.Grade, &picto, &rarete, &potentielle,
			&hp, &atk, &frc, &con, &dex, &intel, &spd, &res, &prec, &sol.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning soldier: %w", err)
		}
		sol.GradePictogram = stringPtr(picto)
		sol.Rarete = summon.Rarity(rarete)
		sol.RaretePotentielle = summon.Rarity(potentielle)
		sol.Stats = summon.Stats{
			summon.StatHealth:       hp,
			summon.StatAttack:       atk,
			summon.StatForce:        frc,
			summon.StatConstitution: con,
			summon.StatDexterity:    dex,
			summon.StatIntelligence: intel,
			summon.StatSpeed:        spd,
			summon.StatResistance:   res,
			summon.StatPrecision:    prec,
		}
		out = append(out, sol)
	}
	return out, rows.Err()
}

// ListSummonLogs returns the newest entries first. playerID 0 means every
// player; limit <= 0 means 50.
func (s *Store) ListSummonLogs(ctx context.Context, playerID int64, limit int) ([]summon.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, player_id, soldier_id, text, rarity, grade, created_at FROM summon_logs`
	args := []any{}
	if playerID != 0 {
		query += ` WHERE player_id = ?`
		args = append(args, playerID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing summon logs: %w", err)
	}
	defer rows.Close()

	out := []summon.LogEntry{}
	for rows.Next() {
		var (
			e         summon.LogEntry
			soldierID sql.NullInt64
			rarity    string
		)
		if err := rows.Scan(&e.ID, &e.PlayerID, &soldierID, &e.Text, &rarity, &e.Grade, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning summon log: %w", err)
		}
		e.SoldierID = soldierID.Int64
		e.Rarity = summon.Rarity(rarity)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
