// types.go
package game

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Raw balance config loaded from YAML; mirrors configs/balance/*.yaml.
type RawConfig struct {
	Version string `yaml:"version"`
	Notes   string `yaml:"notes,omitempty"`

	BaseProbabilities  OrderedWeights               `yaml:"baseProbabilities,omitempty"`
	LevelModifier      *LevelModifierCfg            `yaml:"levelModifier,omitempty"`
	GradeProbabilities OrderedWeights               `yaml:"gradeProbabilities,omitempty"`
	MaxRarityPerGrade  map[string]string            `yaml:"maxRarityPerGrade,omitempty"`
	RarityModifiers    map[string]RarityModifierCfg `yaml:"rarityModifiers,omitempty"`
	GradeModifiers     map[string]float64           `yaml:"gradeModifiers,omitempty"`
	Soldat             *SoldatCfg                   `yaml:"soldat,omitempty"`
	Identity           *IdentityCfg                 `yaml:"identity,omitempty"`
}

type LevelModifierCfg struct {
	Exponent *float64 `yaml:"exponent"`
	PerLevel *float64 `yaml:"perLevel"`
}

type RarityModifierCfg struct {
	StatsMultiplier *float64       `yaml:"statsMultiplier,omitempty"`
	Bonus           map[string]int `yaml:"bonus,omitempty"`
}

type SoldatCfg struct {
	Grade     string         `yaml:"grade,omitempty"` // fallback grade; the drawn grade always wins
	BaseStats map[string]int `yaml:"baseStats"`
}

type IdentityCfg struct {
	Nationalities   []string `yaml:"nationalities,omitempty"`
	MaxNameAttempts int      `yaml:"maxNameAttempts,omitempty"`
}

// WeightEntry is one key of an ordered weight mapping.
type WeightEntry struct {
	Key    string
	Weight float64
}

// OrderedWeights is a YAML mapping of key -> weight that keeps the order the
// keys were written in. The draw scales weights by that position.
type OrderedWeights []WeightEntry

// UnmarshalYAML walks the mapping node pair by pair so order survives.
func (w *OrderedWeights) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: weights must be a mapping", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	out := make(OrderedWeights, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if seen[k.Value] {
			return fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		var f float64
		if err := v.Decode(&f); err != nil {
			return fmt.Errorf("line %d: weight for %q: %w", v.Line, k.Value, err)
		}
		out = append(out, WeightEntry{Key: k.Value, Weight: f})
	}
	*w = out
	return nil
}

// MarshalYAML writes the entries back as an ordered mapping.
func (w OrderedWeights) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range w {
		var v yaml.Node
		if err := v.Encode(e.Weight); err != nil {
			return nil, err
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Key},
			&v,
		)
	}
	return n, nil
}

// Keys returns the keys in order.
func (w OrderedWeights) Keys() []string {
	out := make([]string, len(w))
	for i, e := range w {
		out[i] = e.Key
	}
	return out
}
