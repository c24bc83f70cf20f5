package game

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/season balance files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "balance", "default.yaml")
}
func (p Paths) SeasonPath(season string) string {
	return filepath.Join(p.BaseDir, "balance", "seasons", season+".yaml")
}

// Files lists every file LoadMerged(season) reads; used by the watcher.
func (p Paths) Files(season string) []string {
	if season == "" {
		return []string{p.DefaultPath()}
	}
	return []string{p.DefaultPath(), p.SeasonPath(season)}
}

const defaultKey = "$default"

// Loader reads YAML balance configs and merges default → season.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: season or "$default"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the file layout this loader reads from.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads default.yaml and overlays the season file (optional).
// It returns the merged RawConfig (without validation).
func (l *Loader) LoadMerged(season string) (RawConfig, error) {
	key := season
	if key == "" {
		key = defaultKey
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, found, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	if !found {
		return RawConfig{}, fmt.Errorf("read default: %s: %w", l.paths.DefaultPath(), os.ErrNotExist)
	}
	merged := defCfg
	if season != "" {
		seasonCfg, _, err := readYAML(l.paths.SeasonPath(season)) // season file optional
		if err != nil {
			return RawConfig{}, fmt.Errorf("read season %q: %w", season, err)
		}
		merged = mergeRaw(defCfg, seasonCfg)
	}

	l.mu.Lock()
	l.cache[defaultKey] = defCfg
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return found=false, no error.
func readYAML(path string) (cfg RawConfig, found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}

// mergeRaw overlays 'b' onto 'a' where 'b' is set.
// Weight tables are replaced whole (their order is meaningful); keyed maps
// are merged key by key; nested sections merge field by field.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// ordered tables
	if b.BaseProbabilities != nil {
		out.BaseProbabilities = append(OrderedWeights(nil), b.BaseProbabilities...)
	}
	if b.GradeProbabilities != nil {
		out.GradeProbabilities = append(OrderedWeights(nil), b.GradeProbabilities...)
	}

	// level modifier
	switch {
	case out.LevelModifier == nil && b.LevelModifier != nil:
		c := *b.LevelModifier
		out.LevelModifier = &c
	case out.LevelModifier != nil && b.LevelModifier != nil:
		c := *out.LevelModifier
		if b.LevelModifier.Exponent != nil {
			c.Exponent = b.LevelModifier.Exponent
		}
		if b.LevelModifier.PerLevel != nil {
			c.PerLevel = b.LevelModifier.PerLevel
		}
		out.LevelModifier = &c
	}

	// keyed maps
	out.MaxRarityPerGrade = mergeMap(a.MaxRarityPerGrade, b.MaxRarityPerGrade)
	out.GradeModifiers = mergeMap(a.GradeModifiers, b.GradeModifiers)
	out.RarityModifiers = mergeMap(a.RarityModifiers, b.RarityModifiers)

	// soldat template
	switch {
	case out.Soldat == nil && b.Soldat != nil:
		c := SoldatCfg{Grade: b.Soldat.Grade, BaseStats: maps.Clone(b.Soldat.BaseStats)}
		out.Soldat = &c
	case out.Soldat != nil && b.Soldat != nil:
		c := SoldatCfg{Grade: out.Soldat.Grade, BaseStats: mergeMap(out.Soldat.BaseStats, b.Soldat.BaseStats)}
		if b.Soldat.Grade != "" {
			c.Grade = b.Soldat.Grade
		}
		out.Soldat = &c
	}

	// identity
	switch {
	case out.Identity == nil && b.Identity != nil:
		c := *b.Identity
		out.Identity = &c
	case out.Identity != nil && b.Identity != nil:
		c := *out.Identity
		if len(b.Identity.Nationalities) > 0 {
			c.Nationalities = append([]string(nil), b.Identity.Nationalities...)
		}
		if b.Identity.MaxNameAttempts != 0 {
			c.MaxNameAttempts = b.Identity.MaxNameAttempts
		}
		out.Identity = &c
	}

	return out
}

func mergeMap[V any](a, b map[string]V) map[string]V {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string]V, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
