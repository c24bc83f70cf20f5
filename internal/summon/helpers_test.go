package summon

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// seqRNG replays a fixed sequence of draws, cycling when exhausted.
type seqRNG struct {
	vals []float64
	i    int
}

func (s *seqRNG) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func testConfig() *Config {
	return &Config{
		BaseProbabilities: []Weight{
			{Key: string(Commun), Value: 50},
			{Key: string(PeuCommun), Value: 25},
			{Key: string(Rare), Value: 12},
			{Key: string(Epique), Value: 7},
			{Key: string(Relique), Value: 3.5},
			{Key: string(Legendaire), Value: 2},
			{Key: string(Mythique), Value: 0.5},
		},
		GradeProbabilities: []Weight{
			{Key: "Soldat", Value: 60},
			{Key: "Caporal", Value: 25},
			{Key: "Sergent", Value: 10},
			{Key: "Lieutenant", Value: 5},
		},
		LevelModifier: LevelModifier{Exponent: 1.2, PerLevel: 0.05},
		MaxRarityPerGrade: map[string]Rarity{
			"Soldat":     Rare,
			"Caporal":    Epique,
			"Sergent":    Relique,
			"Lieutenant": Mythique,
		},
		RarityModifiers: map[Rarity]RarityModifier{
			Commun:    {StatsMultiplier: 1},
			PeuCommun: {StatsMultiplier: 1.1},
			Rare:      {StatsMultiplier: 1.25, Bonus: Stats{StatPrecision: 5}},
			Epique:    {StatsMultiplier: 1.5, Bonus: Stats{StatAttack: 5}},
			Mythique:  {StatsMultiplier: 3, Bonus: Stats{StatPrecision: 40, StatHealth: 50}},
		},
		GradeModifiers: map[string]float64{
			"Soldat":     1,
			"Caporal":    1.1,
			"Sergent":    1.2,
			"Lieutenant": 1.4,
		},
		BaseGrade: "Soldat",
		BaseStats: Stats{
			StatHealth:       100,
			StatAttack:       10,
			StatForce:        10,
			StatConstitution: 10,
			StatDexterity:    10,
			StatIntelligence: 10,
			StatSpeed:        10,
			StatResistance:   10,
			StatPrecision:    60,
		},
	}
}

type fakeNames struct {
	first []string
	last  []string
	err   error
	calls int
}

func (f *fakeNames) DrawFirstName(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.first) == 0 {
		return "", nil
	}
	return f.first[f.calls%len(f.first)], nil
}

func (f *fakeNames) DrawLastName(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	defer func() { f.calls++ }()
	if len(f.last) == 0 {
		return "", nil
	}
	return f.last[f.calls%len(f.last)], nil
}

type fakeGrades struct {
	pictos map[string]string
	err    error
}

func (f *fakeGrades) GradeInfo(_ context.Context, grade string) (*GradeInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.pictos[grade]
	if !ok {
		return nil, nil
	}
	return &GradeInfo{Pictogram: &p}, nil
}

type fakeSoldiers struct {
	mu           sync.Mutex
	taken        map[string]bool
	alwaysExists bool
	existsErr    error
	createErr    error
	logErr       error
	existsCalls  int
	created      []Soldier
	logs         []LogEntry
}

func (f *fakeSoldiers) SoldierExists(_ context.Context, first, last string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.alwaysExists || f.taken[first+" "+last], nil
}

func (f *fakeSoldiers) PersistSummon(_ context.Context, s Soldier, e LogEntry) (Soldier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return Soldier{}, f.createErr
	}
	if f.logErr != nil {
		return Soldier{}, f.logErr
	}
	s.ID = int64(len(f.created) + 1)
	f.created = append(f.created, s)
	e.ID = int64(len(f.logs) + 1)
	e.SoldierID = s.ID
	f.logs = append(f.logs, e)
	return s, nil
}

var errBackend = errors.New("backend down")

func newTestEngine(names *fakeNames, grades *fakeGrades, soldiers *fakeSoldiers, seed uint64) *Engine {
	e, err := NewEngine(testConfig(), Collaborators{Names: names, Grades: grades, Soldiers: soldiers}, NewSeededRNG(seed))
	if err != nil {
		panic(fmt.Sprintf("newTestEngine: %v", err))
	}
	return e
}
