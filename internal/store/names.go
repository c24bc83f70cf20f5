package store

import (
	"context"
	"fmt"
)

// DrawFirstName implements summon.NameRegistry. An empty pool yields "".
func (s *Store) DrawFirstName(ctx context.Context, nationality string) (string, error) {
	return s.drawName(ctx, "first_names", nationality)
}

// DrawLastName implements summon.NameRegistry. An empty pool yields "".
func (s *Store) DrawLastName(ctx context.Context, nationality string) (string, error) {
	return s.drawName(ctx, "last_names", nationality)
}

// drawName picks uniformly: count the pool, then fetch one row at a random offset.
func (s *Store) drawName(ctx context.Context, table, nationality string) (string, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(*) FROM `+table+` WHERE nationality = ?`), nationality,
	).Scan(&n); err != nil {
		return "", fmt.Errorf("counting %s: %w", table, err)
	}
	if n == 0 {
		return "", nil
	}
	var name string
	if err := s.db.QueryRowContext(ctx,
		s.q(`SELECT name FROM `+table+` WHERE nationality = ? ORDER BY id LIMIT 1 OFFSET ?`),
		nationality, s.pickIndex(n),
	).Scan(&name); err != nil {
		return "", fmt.Errorf("drawing from %s: %w", table, err)
	}
	return name, nil
}

// NameCounts returns the pool sizes per nationality.
func (s *Store) NameCounts(ctx context.Context) (map[string][2]int, error) {
	out := make(map[string][2]int)
	for i, table := range []string{"first_names", "last_names"} {
		rows, err := s.db.QueryContext(ctx, `SELECT nationality, COUNT(*) FROM `+table+` GROUP BY nationality`)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		for rows.Next() {
			var (
				nat string
				n   int
			)
			if err := rows.Scan(&nat, &n); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning %s count: %w", table, err)
			}
			c := out[nat]
			c[i] = n
			out[nat] = c
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
