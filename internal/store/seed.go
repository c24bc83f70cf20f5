package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/summon-backend/internal/leveling"
)

// FirstName is a first-name pool entry.
type FirstName struct {
	Name   string `yaml:"name"`
	Gender string `yaml:"gender,omitempty"`
}

// Seed is the reference data file: grade catalog, name pools per
// nationality and the XP curve size.
type Seed struct {
	Grades     []Grade                `yaml:"grades"`
	FirstNames map[string][]FirstName `yaml:"firstNames"`
	LastNames  map[string][]string    `yaml:"lastNames"`
	XPCurve    struct {
		MaxLevel int `yaml:"maxLevel"`
	} `yaml:"xpCurve"`
}

// SeedReport counts what ApplySeed wrote.
type SeedReport struct {
	Grades     int
	FirstNames int
	LastNames  int
	Levels     int
}

// LoadSeed reads a seed YAML file.
func LoadSeed(path string) (Seed, error) {
	var sd Seed
	data, err := os.ReadFile(path)
	if err != nil {
		return sd, fmt.Errorf("reading seed %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &sd); err != nil {
		return sd, fmt.Errorf("parsing seed %s: %w", path, err)
	}
	return sd, nil
}

// ApplySeed replaces grades, name pools and the XP curve in one transaction.
// Names are trimmed and deduplicated per nationality.
func (s *Store) ApplySeed(ctx context.Context, sd Seed) (SeedReport, error) {
	var rep SeedReport
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"grades", "first_names", "last_names"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		for _, g := range sd.Grades {
			if err := s.upsertGrade(ctx, tx, g); err != nil {
				return err
			}
			rep.Grades++
		}

		for _, nat := range sortedKeys(sd.FirstNames) {
			seen := make(map[string]bool)
			for _, fn := range sd.FirstNames[nat] {
				name := strings.TrimSpace(fn.Name)
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				if _, err := tx.ExecContext(ctx,
					s.q(`INSERT INTO first_names (name, gender, nationality) VALUES (?, ?, ?)`),
					name, fn.Gender, nat,
				); err != nil {
					return fmt.Errorf("inserting first name %q: %w", name, err)
				}
				rep.FirstNames++
			}
		}

		for _, nat := range sortedKeys(sd.LastNames) {
			seen := make(map[string]bool)
			for _, ln := range sd.LastNames[nat] {
				name := strings.TrimSpace(ln)
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				if _, err := tx.ExecContext(ctx,
					s.q(`INSERT INTO last_names (name, nationality) VALUES (?, ?)`), name, nat,
				); err != nil {
					return fmt.Errorf("inserting last name %q: %w", name, err)
				}
				rep.LastNames++
			}
		}

		curve := leveling.XPCurve(sd.XPCurve.MaxLevel)
		if err := s.replaceXPCurve(ctx, tx, curve); err != nil {
			return err
		}
		rep.Levels = len(curve)
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}
	return rep, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
