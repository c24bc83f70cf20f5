package summon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatMultiplier(t *testing.T) {
	assert.InDelta(t, 1.0, statMultiplier(1, 1), 1e-12)
	assert.InDelta(t, 1.85, statMultiplier(1.2, 1.5), 1e-12)
	assert.InDelta(t, 0.75, statMultiplier(0.5, 1), 1e-12)
}

func TestComputeStatsScalesAndBonuses(t *testing.T) {
	cfg := testConfig()

	s := computeStats(cfg, "Caporal", Epique)
	// 1 + 0.1*0.5 + 0.5*1.5 = 1.8
	assert.Equal(t, 180, s[StatHealth])
	assert.Equal(t, 18+5, s[StatAttack], "flat bonus after scaling")
	assert.Equal(t, 18, s[StatForce])
	assert.Equal(t, 100, s[StatPrecision], "60*1.8=108 clamps to 100")
}

func TestComputeStatsNeutralDefaults(t *testing.T) {
	cfg := testConfig()

	s := computeStats(cfg, "Colonel", Relique) // neither has a modifier
	for _, st := range ScaledStats {
		assert.Equal(t, cfg.BaseStats[st], s[st], st)
	}
}

func TestComputeStatsPrecisionAlwaysClamped(t *testing.T) {
	cfg := testConfig()
	cfg.BaseStats[StatPrecision] = 2

	low := computeStats(cfg, "Soldat", Commun)
	assert.Equal(t, 5, low[StatPrecision])

	cfg.BaseStats[StatPrecision] = 90
	high := computeStats(cfg, "Lieutenant", Mythique) // +40 bonus on top
	assert.Equal(t, 100, high[StatPrecision])

	for _, g := range cfg.GradeProbabilities {
		for _, r := range RarityOrder {
			p := computeStats(cfg, g.Key, r)[StatPrecision]
			assert.True(t, p >= 5 && p <= 100, "grade=%s rarity=%s precision=%d", g.Key, r, p)
		}
	}
}

func TestComputeStatsMissingBaseStatStartsAtZero(t *testing.T) {
	cfg := testConfig()
	delete(cfg.BaseStats, StatSpeed)

	s := computeStats(cfg, "Soldat", Commun)
	assert.Equal(t, 0, s[StatSpeed])
	_, present := s[StatSpeed]
	assert.True(t, present)
}
