package summon

import "math"

const (
	rarityDivisor = 2
	gradeDivisor  = 4
)

// levelBonus = level^exponent * perLevel
func levelBonus(level int, m LevelModifier) float64 {
	return math.Pow(float64(level), m.Exponent) * m.PerLevel
}

// AdjustWeights applies the level bonus to a weight table.
// Entry i gets base + bonus*(i/divisor), floored at base/2 so low entries never vanish.
// It returns the adjusted table (same order) and its sum.
func AdjustWeights(base []Weight, bonus, divisor float64) ([]Weight, float64) {
	out := make([]Weight, len(base))
	var total float64
	for i, w := range base {
		v := w.Value + bonus*(float64(i)/divisor)
		if floor := w.Value / 2; v < floor {
			v = floor
		}
		out[i] = Weight{Key: w.Key, Value: v}
		total += v
	}
	return out, total
}

// Pick draws r in [0, total) and walks the table in order, subtracting each
// weight; the entry where r drops to <= 0 wins.
// ok is false when the walk exhausts without a hit.
func Pick(weights []Weight, total float64, rng RandomSource) (key string, ok bool) {
	if rng == nil {
		rng = DefaultRNG()
	}
	r := rng.Float64() * total
	for _, w := range weights {
		r -= w.Value
		if r <= 0 {
			return w.Key, true
		}
	}
	return "", false
}

// Roll is the outcome of the weighted part of a summon.
type Roll struct {
	Grade     string
	Drawn     Rarity // before the grade cap
	Potential Rarity // after the grade cap
}

func roll(cfg *Config, level int, rng RandomSource) Roll {
	bonus := levelBonus(level, cfg.LevelModifier)

	rw, rt := AdjustWeights(cfg.BaseProbabilities, bonus, rarityDivisor)
	drawn := Commun
	if k, ok := Pick(rw, rt, rng); ok {
		drawn = Rarity(k)
	}

	gw, gt := AdjustWeights(cfg.GradeProbabilities, bonus, gradeDivisor)
	grade := cfg.baseGrade()
	if k, ok := Pick(gw, gt, rng); ok {
		grade = k
	}

	return Roll{
		Grade:     grade,
		Drawn:     drawn,
		Potential: capRarity(drawn, cfg.rarityCap(grade)),
	}
}

func normalizeLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}
