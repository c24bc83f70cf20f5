package summon

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineRejectsMissingSections(t *testing.T) {
	c := Collaborators{Names: &fakeNames{}, Grades: &fakeGrades{}, Soldiers: &fakeSoldiers{}}

	cfg := testConfig()
	cfg.BaseProbabilities = nil
	_, err := NewEngine(cfg, c, nil)
	require.ErrorIs(t, err, ErrConfiguration)

	cfg = testConfig()
	cfg.GradeProbabilities = nil
	_, err = NewEngine(cfg, c, nil)
	require.ErrorIs(t, err, ErrConfiguration)

	cfg = testConfig()
	cfg.MaxRarityPerGrade["Soldat"] = Rarity("SHINY")
	_, err = NewEngine(cfg, c, nil)
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEngine(testConfig(), Collaborators{}, nil)
	require.ErrorIs(t, err, ErrConfiguration)

	e, err := NewEngine(testConfig(), c, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxNameAttempts, e.Config().MaxNameAttempts)
	assert.Len(t, e.Config().Nationalities, 5)
}

func TestSummonCreatesCommunSoldier(t *testing.T) {
	names := &fakeNames{first: []string{"Jean"}, last: []string{"Dupont"}}
	grades := &fakeGrades{pictos: map[string]string{"Soldat": "soldat.png", "Caporal": "caporal.png", "Sergent": "sergent.png", "Lieutenant": "lt.png"}}
	soldiers := &fakeSoldiers{}
	e := newTestEngine(names, grades, soldiers, 3)

	s, err := e.Summon(context.Background(), 42, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1), s.ID)
	assert.Equal(t, int64(42), s.PlayerID)
	assert.Equal(t, "Jean", s.FirstName)
	assert.Equal(t, "Dupont", s.LastName)
	assert.Contains(t, DefaultNationalities, s.Nationality)
	assert.Equal(t, Commun, s.Rarete)
	assert.True(t, s.RaretePotentielle.Valid())
	require.NotNil(t, s.GradePictogram)
	assert.Equal(t, grades.pictos[s.Grade], *s.GradePictogram)
	for _, st := range ScaledStats {
		assert.Contains(t, s.Stats, st)
	}

	require.Len(t, soldiers.logs, 1)
	entry := soldiers.logs[0]
	assert.Equal(t, s.ID, entry.SoldierID)
	assert.Equal(t, int64(42), entry.PlayerID)
	assert.Equal(t, s.RaretePotentielle, entry.Rarity)
	assert.Equal(t, s.Grade, entry.Grade)
	assert.Contains(t, entry.Text, "Jean Dupont")
	assert.Contains(t, entry.Text, s.Grade)
	assert.Contains(t, entry.Text, string(s.RaretePotentielle))
}

func TestSummonRareteAlwaysCommun(t *testing.T) {
	cfg := testConfig()
	cfg.BaseProbabilities = []Weight{{Key: string(Mythique), Value: 1}}
	cfg.GradeProbabilities = []Weight{{Key: "Lieutenant", Value: 1}}
	soldiers := &fakeSoldiers{}
	e, err := NewEngine(cfg, Collaborators{
		Names:    &fakeNames{first: []string{"A"}, last: []string{"B"}},
		Grades:   &fakeGrades{},
		Soldiers: soldiers,
	}, NewSeededRNG(5))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s, err := e.Summon(context.Background(), 1, 50)
		require.NoError(t, err)
		assert.Equal(t, Commun, s.Rarete)
		assert.Equal(t, Mythique, s.RaretePotentielle)
		assert.Nil(t, s.GradePictogram, "unknown grade has no pictogram")
	}
}

func TestSummonSoldatCapStoresRare(t *testing.T) {
	cfg := testConfig()
	cfg.BaseProbabilities = []Weight{{Key: string(Epique), Value: 1}}
	cfg.GradeProbabilities = []Weight{{Key: "Soldat", Value: 1}}
	soldiers := &fakeSoldiers{}
	e, err := NewEngine(cfg, Collaborators{
		Names:    &fakeNames{first: []string{"A"}, last: []string{"B"}},
		Grades:   &fakeGrades{},
		Soldiers: soldiers,
	}, NewSeededRNG(5))
	require.NoError(t, err)

	s, err := e.Summon(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Rare, s.RaretePotentielle)
	assert.Equal(t, Rare, soldiers.created[0].RaretePotentielle)
	assert.Equal(t, Rare, soldiers.logs[0].Rarity)
}

func TestSummonEmptyNamePoolsFallBack(t *testing.T) {
	soldiers := &fakeSoldiers{}
	e := newTestEngine(&fakeNames{}, &fakeGrades{}, soldiers, 9)

	s, err := e.Summon(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, FallbackFirstName, s.FirstName)
	assert.True(t, strings.HasPrefix(s.LastName, FallbackLastNamePrefix), s.LastName)
	assert.Greater(t, len(s.LastName), len(FallbackLastNamePrefix))
	assert.Len(t, soldiers.created, 1)
}

func TestSummonRetriesUntilNameIsFree(t *testing.T) {
	names := &fakeNames{first: []string{"Jean", "Paul", "Louis"}, last: []string{"Martin", "Bernard", "Petit"}}
	soldiers := &fakeSoldiers{taken: map[string]bool{"Jean Martin": true, "Paul Bernard": true}}
	e := newTestEngine(names, &fakeGrades{}, soldiers, 11)

	s, err := e.Summon(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Louis", s.FirstName)
	assert.Equal(t, "Petit", s.LastName)
	assert.Equal(t, 3, soldiers.existsCalls)
}

func TestSummonKeepsDuplicateAfterAttemptBudget(t *testing.T) {
	names := &fakeNames{first: []string{"Jean", "Paul"}, last: []string{"Martin", "Durand"}}
	soldiers := &fakeSoldiers{alwaysExists: true}
	e := newTestEngine(names, &fakeGrades{}, soldiers, 13)

	d, err := e.Draft(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, d.UniqueName)
	assert.Equal(t, DefaultMaxNameAttempts, soldiers.existsCalls)
	// attempt 50 draws index 49
	assert.Equal(t, "Paul", d.Soldier.FirstName)
	assert.Equal(t, "Durand", d.Soldier.LastName)

	s, err := e.Summon(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
}

func TestSummonCollaboratorFailures(t *testing.T) {
	ctx := context.Background()
	names := func() *fakeNames { return &fakeNames{first: []string{"A"}, last: []string{"B"}} }

	cases := map[string]struct {
		names    *fakeNames
		grades   *fakeGrades
		soldiers *fakeSoldiers
	}{
		"grade catalog": {names(), &fakeGrades{err: errBackend}, &fakeSoldiers{}},
		"name registry": {&fakeNames{err: errBackend}, &fakeGrades{}, &fakeSoldiers{}},
		"exists check":  {names(), &fakeGrades{}, &fakeSoldiers{existsErr: errBackend}},
		"create":        {names(), &fakeGrades{}, &fakeSoldiers{createErr: errBackend}},
		"append log":    {names(), &fakeGrades{}, &fakeSoldiers{logErr: errBackend}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(tc.names, tc.grades, tc.soldiers, 1)
			s, err := e.Summon(ctx, 1, 1)
			require.ErrorIs(t, err, ErrCollaboratorUnavailable)
			require.ErrorIs(t, err, errBackend)
			assert.Zero(t, s)
			assert.Empty(t, tc.soldiers.created)
			assert.Empty(t, tc.soldiers.logs)
		})
	}
}

func TestRollDefaultsLevelToOne(t *testing.T) {
	c := Collaborators{Names: &fakeNames{}, Grades: &fakeGrades{}, Soldiers: &fakeSoldiers{}}
	a, err := NewEngine(testConfig(), c, NewSeededRNG(99))
	require.NoError(t, err)
	b, err := NewEngine(testConfig(), c, NewSeededRNG(99))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.Equal(t, a.Roll(1), b.Roll(0))
	}
}
