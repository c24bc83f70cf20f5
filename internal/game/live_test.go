package game

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xtding233/summon-backend/internal/summon"
)

type nopCollab struct{}

func (nopCollab) DrawFirstName(context.Context, string) (string, error) { return "", nil }
func (nopCollab) DrawLastName(context.Context, string) (string, error)  { return "", nil }
func (nopCollab) GradeInfo(context.Context, string) (*summon.GradeInfo, error) {
	return nil, nil
}
func (nopCollab) SoldierExists(context.Context, string, string) (bool, error) { return false, nil }
func (nopCollab) PersistSummon(_ context.Context, s summon.Soldier, _ summon.LogEntry) (summon.Soldier, error) {
	return s, nil
}

func buildTestEngine(cfg *summon.Config) (*summon.Engine, error) {
	c := nopCollab{}
	return summon.NewEngine(cfg, summon.Collaborators{Names: c, Grades: c, Soldiers: c}, summon.NewSeededRNG(1))
}

func TestLiveReloadSwapsEngine(t *testing.T) {
	l := newTestLoader(t, baseYAML, "")
	live, err := NewLive(l, "", buildTestEngine)
	require.NoError(t, err)
	first := live.Engine()
	assert.Equal(t, "1", live.Version())
	assert.Equal(t, summon.Rare, first.Config().MaxRarityPerGrade["Soldat"])

	writeFile(t, l.Paths().DefaultPath(), strings.Replace(
		strings.Replace(baseYAML, `version: "1"`, `version: "2"`, 1),
		"Soldat: RARE", "Soldat: EPIQUE", 1))
	require.NoError(t, live.Reload())
	assert.Equal(t, "2", live.Version())
	assert.NotSame(t, first, live.Engine())
	assert.Equal(t, summon.Epique, live.Engine().Config().MaxRarityPerGrade["Soldat"])
	// the old snapshot is untouched
	assert.Equal(t, summon.Rare, first.Config().MaxRarityPerGrade["Soldat"])
}

func TestLiveReloadKeepsPreviousOnError(t *testing.T) {
	l := newTestLoader(t, baseYAML, "")
	live, err := NewLive(l, "", buildTestEngine)
	require.NoError(t, err)
	before := live.Engine()

	writeFile(t, l.Paths().DefaultPath(), "version: broken\nlevelModifier: { exponent: 1, perLevel: 1 }\n")
	err = live.Reload()
	require.ErrorIs(t, err, summon.ErrConfiguration)
	assert.Same(t, before, live.Engine())
	assert.Equal(t, "1", live.Version())
}

func TestNewLiveFailsOnMissingSections(t *testing.T) {
	l := newTestLoader(t, "version: x\n", "")
	_, err := NewLive(l, "", buildTestEngine)
	require.ErrorIs(t, err, summon.ErrConfiguration)
}

func TestLiveWatchReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := newTestLoader(t, baseYAML, "")
	live, err := NewLive(l, "", buildTestEngine)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- live.Watch(ctx, 20*time.Millisecond) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	writeFile(t, l.Paths().DefaultPath(), strings.Replace(baseYAML, `version: "1"`, `version: "3"`, 1))

	assert.Eventually(t, func() bool { return live.Version() == "3" }, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestLiveWatchReloadsOncePerBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := newTestLoader(t, baseYAML, `version: "1-s1"`)
	var builds atomic.Int32
	live, err := NewLive(l, "s1", func(cfg *summon.Config) (*summon.Engine, error) {
		builds.Add(1)
		return buildTestEngine(cfg)
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), builds.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- live.Watch(ctx, 150*time.Millisecond) }()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, l.Paths().DefaultPath(), strings.Replace(baseYAML, `version: "1"`, `version: "2"`, 1))
	writeFile(t, l.Paths().SeasonPath("s1"), `version: "2-s1"`)

	assert.Eventually(t, func() bool { return live.Version() == "2-s1" }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(2), builds.Load())
	cancel()
	require.NoError(t, <-done)
}
