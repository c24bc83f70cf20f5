package summon

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration reports a balance config the engine cannot draw from.
var ErrConfiguration = errors.New("summon configuration error")

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("weight %v is not finite", w)
	}
	if w < 0 {
		return fmt.Errorf("weight %v is negative", w)
	}
	return nil
}

// Validate checks the sections the draw depends on and fills defaults for
// the optional ones. It is meant to run once, when the config is built.
func (c *Config) Validate() error {
	if err := c.check(); err != nil {
		return err
	}
	if len(c.Nationalities) == 0 {
		c.Nationalities = append([]string(nil), DefaultNationalities...)
	}
	if c.MaxNameAttempts <= 0 {
		c.MaxNameAttempts = DefaultMaxNameAttempts
	}
	return nil
}

// check is Validate without the defaults; it never writes to c.
func (c *Config) check() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrConfiguration)
	}
	if len(c.BaseProbabilities) == 0 {
		return fmt.Errorf("%w: baseProbabilities is empty", ErrConfiguration)
	}
	if len(c.GradeProbabilities) == 0 {
		return fmt.Errorf("%w: gradeProbabilities is empty", ErrConfiguration)
	}
	if len(c.BaseStats) == 0 {
		return fmt.Errorf("%w: soldat.baseStats is empty", ErrConfiguration)
	}
	for _, w := range c.BaseProbabilities {
		if !Rarity(w.Key).Valid() {
			return fmt.Errorf("%w: baseProbabilities: unknown rarity %q", ErrConfiguration, w.Key)
		}
		if err := validateWeight(w.Value); err != nil {
			return fmt.Errorf("%w: baseProbabilities[%s]: %v", ErrConfiguration, w.Key, err)
		}
	}
	for _, w := range c.GradeProbabilities {
		if err := validateWeight(w.Value); err != nil {
			return fmt.Errorf("%w: gradeProbabilities[%s]: %v", ErrConfiguration, w.Key, err)
		}
	}
	for grade, r := range c.MaxRarityPerGrade {
		if !r.Valid() {
			return fmt.Errorf("%w: maxRarityPerGrade[%s]: unknown rarity %q", ErrConfiguration, grade, r)
		}
	}
	return nil
}
