package summon

import "math"

const (
	minPrecision = 5
	maxPrecision = 100
)

// statMultiplier blends the grade and rarity multipliers.
// Grade counts for half its deviation, rarity for one and a half.
func statMultiplier(gradeMod, rarityMod float64) float64 {
	return 1 + (gradeMod-1)*0.5 + (rarityMod-1)*1.5
}

// computeStats derives a fresh soldier's stats from the base template.
// Precision is a percentage and stays within [5, 100], bonuses included.
func computeStats(cfg *Config, grade string, rarity Rarity) Stats {
	rm := cfg.rarityModifier(rarity)
	m := statMultiplier(cfg.gradeModifier(grade), rm.StatsMultiplier)

	out := make(Stats, len(ScaledStats))
	for s, v := range cfg.BaseStats {
		out[s] = v
	}
	for _, s := range ScaledStats {
		out[s] = int(math.Round(float64(cfg.BaseStats[s]) * m))
	}
	out[StatPrecision] = clampPrecision(out[StatPrecision])

	for s, b := range rm.Bonus {
		out[s] += b
	}
	out[StatPrecision] = clampPrecision(out[StatPrecision])
	return out
}

func clampPrecision(v int) int {
	if v < minPrecision {
		return minPrecision
	}
	if v > maxPrecision {
		return maxPrecision
	}
	return v
}
