package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xtding233/summon-backend/internal/summon"
)

func mustRaw(t *testing.T, body string) RawConfig {
	t.Helper()
	var raw RawConfig
	require.NoError(t, yaml.Unmarshal([]byte(body), &raw))
	return raw
}

func TestValidateRawAccepts(t *testing.T) {
	require.NoError(t, ValidateRaw(mustRaw(t, baseYAML)))
}

func TestValidateRawCollectsErrors(t *testing.T) {
	raw := mustRaw(t, `
baseProbabilities:
  COMMUN: -1
  SHINY: 2
gradeProbabilities:
  Soldat: -3
levelModifier: { exponent: 1 }
maxRarityPerGrade:
  Soldat: GOLD
rarityModifiers:
  RARE: { statsMultiplier: 0, bonus: { luck: 1 } }
gradeModifiers:
  Soldat: 0
soldat:
  baseStats: { health: -5, mana: 3 }
identity:
  nationalities: ["FR", " "]
  maxNameAttempts: -1
`)
	err := ValidateRaw(raw)
	require.Error(t, err)
	for _, want := range []string{
		"baseProbabilities.COMMUN must be a finite weight",
		"baseProbabilities.SHINY is not a rarity tier",
		"gradeProbabilities.Soldat must be a finite weight",
		"levelModifier needs both",
		`maxRarityPerGrade.Soldat: "GOLD"`,
		"rarityModifiers.RARE.statsMultiplier must be > 0",
		"rarityModifiers.RARE.bonus.luck is not a stat",
		"gradeModifiers.Soldat must be > 0",
		"soldat.baseStats.health must be >= 0",
		"soldat.baseStats.mana is not a stat",
		"identity.maxNameAttempts",
		"identity.nationalities[1] is empty",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestResolveMissingSections(t *testing.T) {
	cases := []struct {
		section string
		drop    func(*RawConfig)
	}{
		{"baseProbabilities", func(r *RawConfig) { r.BaseProbabilities = nil }},
		{"gradeProbabilities", func(r *RawConfig) { r.GradeProbabilities = nil }},
		{"levelModifier", func(r *RawConfig) { r.LevelModifier = nil }},
		{"soldat.baseStats", func(r *RawConfig) { r.Soldat = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.section, func(t *testing.T) {
			raw := mustRaw(t, baseYAML)
			tc.drop(&raw)
			_, err := Resolve(raw)
			require.ErrorIs(t, err, summon.ErrConfiguration)
			assert.Contains(t, err.Error(), tc.section)
		})
	}
}

func TestResolveWrapsValidationErrors(t *testing.T) {
	raw := mustRaw(t, baseYAML)
	raw.MaxRarityPerGrade["Caporal"] = "GOLD"
	_, err := Resolve(raw)
	require.ErrorIs(t, err, summon.ErrConfiguration)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestResolveNeutralModifierDefaults(t *testing.T) {
	raw := mustRaw(t, baseYAML)
	raw.RarityModifiers = map[string]RarityModifierCfg{"RARE": {Bonus: map[string]int{"speed": 2}}}
	raw.GradeModifiers = nil
	cfg, err := Resolve(raw)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.RarityModifiers[summon.Rare].StatsMultiplier)
	assert.Empty(t, cfg.GradeModifiers)
}
