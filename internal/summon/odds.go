package summon

// Chance is one row of a published odds table.
type Chance struct {
	Key         string  `json:"key"`
	Weight      float64 `json:"weight"`
	Probability float64 `json:"probability"`
}

// Odds lists the adjusted draw weights at a given level, before grade caps.
type Odds struct {
	Level    int               `json:"level"`
	Rarities []Chance          `json:"rarities"`
	Grades   []Chance          `json:"grades"`
	Caps     map[string]Rarity `json:"caps"`
}

// ComputeOdds exposes the weights the engine would use at level.
func ComputeOdds(cfg *Config, level int) Odds {
	level = normalizeLevel(level)
	bonus := levelBonus(level, cfg.LevelModifier)

	caps := make(map[string]Rarity, len(cfg.GradeProbabilities))
	for _, g := range cfg.GradeProbabilities {
		caps[g.Key] = cfg.rarityCap(g.Key)
	}
	return Odds{
		Level:    level,
		Rarities: chances(AdjustWeights(cfg.BaseProbabilities, bonus, rarityDivisor)),
		Grades:   chances(AdjustWeights(cfg.GradeProbabilities, bonus, gradeDivisor)),
		Caps:     caps,
	}
}

func chances(ws []Weight, total float64) []Chance {
	out := make([]Chance, len(ws))
	for i, w := range ws {
		p := 0.0
		if total > 0 {
			p = w.Value / total
		}
		out[i] = Chance{Key: w.Key, Weight: w.Value, Probability: p}
	}
	return out
}
