package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/summon-backend/internal/summon"
)

// ValidateRaw checks semantic constraints of a RawConfig.
// Missing required sections are reported by Resolve, not here.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	badWeight := func(v float64) bool {
		return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
	}

	// baseProbabilities: keys must be rarity tiers
	for _, e := range cfg.BaseProbabilities {
		if !summon.Rarity(e.Key).Valid() {
			errs = append(errs, fmt.Sprintf("baseProbabilities.%s is not a rarity tier", e.Key))
		}
		if badWeight(e.Weight) {
			errs = append(errs, fmt.Sprintf("baseProbabilities.%s must be a finite weight >= 0", e.Key))
		}
	}
	for _, e := range cfg.GradeProbabilities {
		if badWeight(e.Weight) {
			errs = append(errs, fmt.Sprintf("gradeProbabilities.%s must be a finite weight >= 0", e.Key))
		}
	}

	// levelModifier
	if lm := cfg.LevelModifier; lm != nil {
		if lm.Exponent == nil || lm.PerLevel == nil {
			errs = append(errs, "levelModifier needs both exponent and perLevel")
		}
	}

	// caps must be members of RarityOrder
	for grade, r := range cfg.MaxRarityPerGrade {
		if !summon.Rarity(r).Valid() {
			errs = append(errs, fmt.Sprintf("maxRarityPerGrade.%s: %q is not a rarity tier", grade, r))
		}
	}

	for r, m := range cfg.RarityModifiers {
		if !summon.Rarity(r).Valid() {
			errs = append(errs, fmt.Sprintf("rarityModifiers.%s is not a rarity tier", r))
		}
		if m.StatsMultiplier != nil && *m.StatsMultiplier <= 0 {
			errs = append(errs, fmt.Sprintf("rarityModifiers.%s.statsMultiplier must be > 0", r))
		}
		for s := range m.Bonus {
			if !summon.Stat(s).Known() {
				errs = append(errs, fmt.Sprintf("rarityModifiers.%s.bonus.%s is not a stat", r, s))
			}
		}
	}

	for g, m := range cfg.GradeModifiers {
		if m <= 0 {
			errs = append(errs, fmt.Sprintf("gradeModifiers.%s must be > 0", g))
		}
	}

	if cfg.Soldat != nil {
		for s, v := range cfg.Soldat.BaseStats {
			if !summon.Stat(s).Known() {
				errs = append(errs, fmt.Sprintf("soldat.baseStats.%s is not a stat", s))
			}
			if v < 0 {
				errs = append(errs, fmt.Sprintf("soldat.baseStats.%s must be >= 0", s))
			}
		}
	}

	if cfg.Identity != nil {
		if cfg.Identity.MaxNameAttempts < 0 {
			errs = append(errs, "identity.maxNameAttempts must be >= 0 (0 means default)")
		}
		for i, n := range cfg.Identity.Nationalities {
			if strings.TrimSpace(n) == "" {
				errs = append(errs, fmt.Sprintf("identity.nationalities[%d] is empty", i))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
