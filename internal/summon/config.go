package summon

// Stat names a numeric soldier attribute.
type Stat string

const (
	StatHealth       Stat = "health"
	StatAttack       Stat = "attack"
	StatForce        Stat = "force"
	StatConstitution Stat = "constitution"
	StatDexterity    Stat = "dexterity"
	StatIntelligence Stat = "intelligence"
	StatSpeed        Stat = "speed"
	StatResistance   Stat = "resistance"
	StatPrecision    Stat = "precision"
)

// ScaledStats are the stats multiplied by grade and rarity modifiers.
var ScaledStats = []Stat{
	StatHealth, StatAttack, StatForce, StatConstitution, StatDexterity,
	StatIntelligence, StatSpeed, StatResistance, StatPrecision,
}

// Known reports whether s is one of ScaledStats.
func (s Stat) Known() bool {
	for _, k := range ScaledStats {
		if k == s {
			return true
		}
	}
	return false
}

// Stats maps a stat to its value.
type Stats map[Stat]int

const (
	DefaultBaseGrade       = "Soldat"
	DefaultMaxNameAttempts = 50
)

// DefaultNationalities is used when the balance config names none.
var DefaultNationalities = []string{"FR", "DE", "GB", "IT", "US"}

// Weight is one entry of an ordered weight table.
type Weight struct {
	Key   string
	Value float64
}

// LevelModifier skews weights toward later entries as the character levels up.
type LevelModifier struct {
	Exponent float64
	PerLevel float64
}

// RarityModifier scales stats for a rarity tier and optionally adds flat bonuses.
type RarityModifier struct {
	StatsMultiplier float64
	Bonus           Stats
}

// Config is the immutable balance table the engine draws from.
// Build it once (see game.Resolve) and share it read-only.
type Config struct {
	// Order matters: entry index scales the level bonus.
	BaseProbabilities  []Weight
	GradeProbabilities []Weight
	LevelModifier      LevelModifier

	MaxRarityPerGrade map[string]Rarity
	RarityModifiers   map[Rarity]RarityModifier
	GradeModifiers    map[string]float64

	BaseGrade string
	BaseStats Stats

	Nationalities   []string
	MaxNameAttempts int
}

// rarityCap returns the highest tier a grade may reach. Unset => MYTHIQUE.
func (c *Config) rarityCap(grade string) Rarity {
	if r, ok := c.MaxRarityPerGrade[grade]; ok && r.Valid() {
		return r
	}
	return Mythique
}

func (c *Config) gradeModifier(grade string) float64 {
	if m, ok := c.GradeModifiers[grade]; ok {
		return m
	}
	return 1
}

func (c *Config) rarityModifier(r Rarity) RarityModifier {
	if m, ok := c.RarityModifiers[r]; ok {
		if m.StatsMultiplier == 0 {
			m.StatsMultiplier = 1
		}
		return m
	}
	return RarityModifier{StatsMultiplier: 1}
}

// baseGrade is the fallback when the grade draw exhausts.
func (c *Config) baseGrade() string {
	if c.BaseGrade != "" {
		return c.BaseGrade
	}
	if len(c.GradeProbabilities) > 0 {
		return c.GradeProbabilities[0].Key
	}
	return DefaultBaseGrade
}
