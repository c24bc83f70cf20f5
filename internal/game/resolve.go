// resolve.go
package game

import (
	"fmt"

	"github.com/xtding233/summon-backend/internal/summon"
)

// Resolve validates a merged RawConfig and turns it into the engine's
// immutable summon.Config. A missing required section is a
// summon.ErrConfiguration.
func Resolve(raw RawConfig) (*summon.Config, error) {
	switch {
	case len(raw.BaseProbabilities) == 0:
		return nil, fmt.Errorf("%w: baseProbabilities section missing", summon.ErrConfiguration)
	case len(raw.GradeProbabilities) == 0:
		return nil, fmt.Errorf("%w: gradeProbabilities section missing", summon.ErrConfiguration)
	case raw.LevelModifier == nil:
		return nil, fmt.Errorf("%w: levelModifier section missing", summon.ErrConfiguration)
	case raw.Soldat == nil || len(raw.Soldat.BaseStats) == 0:
		return nil, fmt.Errorf("%w: soldat.baseStats section missing", summon.ErrConfiguration)
	}
	if err := ValidateRaw(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", summon.ErrConfiguration, err)
	}

	cfg := &summon.Config{
		BaseProbabilities:  toWeights(raw.BaseProbabilities),
		GradeProbabilities: toWeights(raw.GradeProbabilities),
		LevelModifier: summon.LevelModifier{
			Exponent: *raw.LevelModifier.Exponent,
			PerLevel: *raw.LevelModifier.PerLevel,
		},
		MaxRarityPerGrade: make(map[string]summon.Rarity, len(raw.MaxRarityPerGrade)),
		RarityModifiers:   make(map[summon.Rarity]summon.RarityModifier, len(raw.RarityModifiers)),
		GradeModifiers:    make(map[string]float64, len(raw.GradeModifiers)),
		BaseGrade:         raw.Soldat.Grade,
		BaseStats:         toStats(raw.Soldat.BaseStats),
	}
	for g, r := range raw.MaxRarityPerGrade {
		cfg.MaxRarityPerGrade[g] = summon.Rarity(r)
	}
	for r, m := range raw.RarityModifiers {
		mod := summon.RarityModifier{StatsMultiplier: 1, Bonus: toStats(m.Bonus)}
		if m.StatsMultiplier != nil {
			mod.StatsMultiplier = *m.StatsMultiplier
		}
		cfg.RarityModifiers[summon.Rarity(r)] = mod
	}
	for g, m := range raw.GradeModifiers {
		cfg.GradeModifiers[g] = m
	}
	if raw.Identity != nil {
		cfg.Nationalities = append([]string(nil), raw.Identity.Nationalities...)
		cfg.MaxNameAttempts = raw.Identity.MaxNameAttempts
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads, merges and resolves the balance config for season.
func (l *Loader) LoadConfig(season string) (*summon.Config, RawConfig, error) {
	raw, err := l.LoadMerged(season)
	if err != nil {
		return nil, RawConfig{}, err
	}
	cfg, err := Resolve(raw)
	if err != nil {
		return nil, raw, err
	}
	return cfg, raw, nil
}

func toWeights(w OrderedWeights) []summon.Weight {
	out := make([]summon.Weight, len(w))
	for i, e := range w {
		out[i] = summon.Weight{Key: e.Key, Value: e.Weight}
	}
	return out
}

func toStats(m map[string]int) summon.Stats {
	if m == nil {
		return nil
	}
	out := make(summon.Stats, len(m))
	for k, v := range m {
		out[summon.Stat(k)] = v
	}
	return out
}
