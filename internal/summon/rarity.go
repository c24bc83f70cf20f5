package summon

// Rarity is a soldier quality tier.
type Rarity string

const (
	Commun     Rarity = "COMMUN"
	PeuCommun  Rarity = "PEU_COMMUN"
	Rare       Rarity = "RARE"
	Epique     Rarity = "EPIQUE"
	Relique    Rarity = "RELIQUE"
	Legendaire Rarity = "LEGENDAIRE"
	Mythique   Rarity = "MYTHIQUE"
)

// RarityOrder lists every tier from lowest to highest. It is only used for
// ordinal comparison; draw order follows the config's own key order.
var RarityOrder = []Rarity{Commun, PeuCommun, Rare, Epique, Relique, Legendaire, Mythique}

// Ordinal returns the position of r in RarityOrder, or -1 if unknown.
func (r Rarity) Ordinal() int {
	for i, t := range RarityOrder {
		if t == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r belongs to RarityOrder.
func (r Rarity) Valid() bool { return r.Ordinal() >= 0 }

// capRarity lowers potential to ceiling when it ranks above it.
// An unknown ceiling caps nothing.
func capRarity(potential, ceiling Rarity) Rarity {
	c := ceiling.Ordinal()
	if c < 0 {
		return potential
	}
	if potential.Ordinal() > c {
		return ceiling
	}
	return potential
}
