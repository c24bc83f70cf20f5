package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xtding233/summon-backend/internal/summon"
)

// Default grade origin, applied when a grade omits it.
const (
	DefaultCountry = "FR"
	DefaultArmy    = "Armée de Terre"
)

// Grade is a military rank of the catalog.
type Grade struct {
	ID        int64   `json:"id" yaml:"-"`
	Name      string  `json:"name" yaml:"name"`
	Pictogram *string `json:"pictogram" yaml:"pictogram,omitempty"`
	Order     *int    `json:"order" yaml:"order,omitempty"`
	NATOCode  *string `json:"natoCode" yaml:"natoCode,omitempty"`
	Country   string  `json:"country" yaml:"country,omitempty"`
	Army      string  `json:"army" yaml:"army,omitempty"`
}

func (g *Grade) applyDefaults() {
	if g.Country == "" {
		g.Country = DefaultCountry
	}
	if g.Army == "" {
		g.Army = DefaultArmy
	}
}

// GradeInfo implements summon.GradeCatalog. Unknown grades return nil, nil.
func (s *Store) GradeInfo(ctx context.Context, name string) (*summon.GradeInfo, error) {
	var picto sql.NullString
	err := s.db.QueryRowContext(ctx, s.q(`SELECT pictogram FROM grades WHERE name = ?`), name).Scan(&picto)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying grade %q: %w", name, err)
	}
	return &summon.GradeInfo{Pictogram: stringPtr(picto)}, nil
}

// ListGrades returns the catalog ordered by rank, unranked grades last.
func (s *Store) ListGrades(ctx context.Context) ([]Grade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, pictogram, rank_order, nato_code, country, army
		 FROM grades ORDER BY rank_order IS NULL, rank_order, name`)
	if err != nil {
		return nil, fmt.Errorf("listing grades: %w", err)
	}
	defer rows.Close()

	out := []Grade{}
	for rows.Next() {
		var (
			g           Grade
			picto, nato sql.NullString
			order       sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.Name, &picto, &order, &nato, &g.Country, &g.Army); err != nil {
			return nil, fmt.Errorf("scanning grade: %w", err)
		}
		g.Pictogram = stringPtr(picto)
		g.NATOCode = stringPtr(nato)
		if order.Valid {
			o := int(order.Int64)
			g.Order = &o
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateGrade inserts a new grade and returns it with its id.
// A grade with the same name yields ErrConflict.
func (s *Store) CreateGrade(ctx context.Context, g Grade) (Grade, error) {
	if g.Name == "" {
		return Grade{}, fmt.Errorf("grade name is required")
	}
	g.applyDefaults()
	var order sql.NullInt64
	if g.Order != nil {
		order = sql.NullInt64{Int64: int64(*g.Order), Valid: true}
	}
	id, err := s.insertID(ctx, s.db,
		`INSERT INTO grades (name, pictogram, rank_order, nato_code, country, army)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.Name, nullString(g.Pictogram), order, nullString(g.NATOCode), g.Country, g.Army,
	)
	if s.dialect.IsDuplicateKeyError(err) {
		return Grade{}, fmt.Errorf("grade %q: %w", g.Name, ErrConflict)
	}
	if err != nil {
		return Grade{}, fmt.Errorf("creating grade %q: %w", g.Name, err)
	}
	g.ID = id
	return g, nil
}

// UpsertGrade creates the grade or updates it by name.
func (s *Store) UpsertGrade(ctx context.Context, g Grade) error {
	return s.upsertGrade(ctx, s.db, g)
}

func (s *Store) upsertGrade(ctx context.Context, x dbtx, g Grade) error {
	if g.Name == "" {
		return fmt.Errorf("grade name is required")
	}
	g.applyDefaults()
	var order sql.NullInt64
	if g.Order != nil {
		order = sql.NullInt64{Int64: int64(*g.Order), Valid: true}
	}
	_, err := x.ExecContext(ctx, s.q(
		`INSERT INTO grades (name, pictogram, rank_order, nato_code, country, army)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
			pictogram = excluded.pictogram,
			rank_order = excluded.rank_order,
			nato_code = excluded.nato_code,
			country = excluded.country,
			army = excluded.army`),
		g.Name, nullString(g.Pictogram), order, nullString(g.NATOCode), g.Country, g.Army,
	)
	if err != nil {
		return fmt.Errorf("upserting grade %q: %w", g.Name, err)
	}
	return nil
}

// DeleteGrade removes a grade by name.
func (s *Store) DeleteGrade(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM grades WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("deleting grade %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting grade %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("grade %q: %w", name, ErrNotFound)
	}
	return nil
}
