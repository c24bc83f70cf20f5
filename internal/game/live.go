package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xtding233/summon-backend/internal/summon"
)

// BuildFunc turns a resolved config into a ready engine.
type BuildFunc func(cfg *summon.Config) (*summon.Engine, error)

// Live serves the current engine and swaps it when the balance files change.
// Each reload builds a new immutable config; summons already running keep
// the engine they started with.
type Live struct {
	loader  *Loader
	season  string
	build   BuildFunc
	current atomic.Pointer[summon.Engine]
	version atomic.Value // string

	Logger *slog.Logger
}

// NewLive loads the config for season and builds the first engine.
// A config error here is fatal to the caller.
func NewLive(loader *Loader, season string, build BuildFunc) (*Live, error) {
	l := &Live{loader: loader, season: season, build: build, Logger: slog.Default()}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Engine returns the engine in service.
func (l *Live) Engine() *summon.Engine { return l.current.Load() }

// Version returns the version string of the loaded balance file.
func (l *Live) Version() string {
	v, _ := l.version.Load().(string)
	return v
}

// Season returns the season overlay in use ("" for none).
func (l *Live) Season() string { return l.season }

// Reload rereads the files. On error the previous engine stays in service.
func (l *Live) Reload() error {
	l.loader.Invalidate()
	if err := l.load(); err != nil {
		l.Logger.Error("balance reload failed, keeping previous config", "season", l.season, "err", err)
		return err
	}
	l.Logger.Info("balance reloaded", "season", l.season, "version", l.Version())
	return nil
}

func (l *Live) load() error {
	cfg, raw, err := l.loader.LoadConfig(l.season)
	if err != nil {
		return fmt.Errorf("load balance: %w", err)
	}
	e, err := l.build(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	l.current.Store(e)
	l.version.Store(raw.Version)
	return nil
}

// Watch reloads once per debounced burst of balance file changes until ctx is done.
func (l *Live) Watch(ctx context.Context, debounce time.Duration) error {
	w := NewFileWatcher(l.loader.Paths().Files(l.season), debounce, func(paths []string) {
		l.Logger.Info("balance files changed", "paths", paths)
		_ = l.Reload()
	})
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	<-ctx.Done()
	w.Stop()
	return nil
}
