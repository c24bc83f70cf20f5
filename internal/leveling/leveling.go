// Package leveling holds the character experience curve.
package leveling

import (
	"math"
	"sort"
)

// DefaultMaxLevel is the level cap of a character.
const DefaultMaxLevel = 90

// Step is the cumulative experience needed to reach Level.
type Step struct {
	Level      int   `json:"level" yaml:"level"`
	XPRequired int64 `json:"xpRequired" yaml:"xpRequired"`
}

// XPCurve builds the table from level 1 (0 XP) up to maxLevel. Going from
// level L to L+1 costs round(L^2.5 * 100). maxLevel < 1 yields DefaultMaxLevel.
func XPCurve(maxLevel int) []Step {
	if maxLevel < 1 {
		maxLevel = DefaultMaxLevel
	}
	curve := make([]Step, 0, maxLevel)
	curve = append(curve, Step{Level: 1, XPRequired: 0})
	var total int64
	for l := 1; l < maxLevel; l++ {
		total += int64(math.Round(math.Pow(float64(l), 2.5) * 100))
		curve = append(curve, Step{Level: l + 1, XPRequired: total})
	}
	return curve
}

// LevelForXP returns the highest level whose requirement is <= xp.
// curve must be sorted by level; an empty curve or negative xp yields 1.
func LevelForXP(curve []Step, xp int64) int {
	i := sort.Search(len(curve), func(i int) bool { return curve[i].XPRequired > xp })
	if i == 0 {
		return 1
	}
	return curve[i-1].Level
}
