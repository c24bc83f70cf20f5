package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/summon-backend/internal/game"
	"github.com/xtding233/summon-backend/internal/grpcapi"
	"github.com/xtding233/summon-backend/internal/server"
	"github.com/xtding233/summon-backend/internal/store"
	"github.com/xtding233/summon-backend/internal/summon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC APIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// openStore connects and applies pending migrations.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	n, err := st.Migrate(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}
	log.Info("database ready", "driver", cfg.Database.Driver, "migrations_applied", n)
	return st, nil
}

func runServe(ctx context.Context) error {
	log.Info("summon server starting", "http", cfg.HTTPAddr, "grpc", cfg.GRPCAddr)

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	live, err := game.NewLive(game.NewLoader(cfg.Balance.Dir), cfg.Balance.Season, func(c *summon.Config) (*summon.Engine, error) {
		e, err := summon.NewEngine(c, summon.Collaborators{Names: st, Grades: st, Soldiers: st}, nil)
		if err != nil {
			return nil, err
		}
		e.Logger = log
		return e, nil
	})
	if err != nil {
		return fmt.Errorf("loading balance: %w", err)
	}
	live.Logger = log
	log.Info("balance loaded", "dir", cfg.Balance.Dir, "season", cfg.Balance.Season, "version", live.Version())

	httpLis, grpcLis, err := listen(cfg.HTTPAddr, cfg.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(live, st, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		log.Info("http listening", "addr", httpLis.Addr().String())
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if grpcLis != nil {
		grpcSrv := grpcapi.NewServer(grpcapi.NewService(live, st), log)
		g.Go(func() error {
			log.Info("grpc listening", "addr", grpcLis.Addr().String())
			if err := grpcSrv.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	if cfg.Balance.HotReload {
		g.Go(func() error {
			return live.Watch(gctx, 0)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("summon server stopped")
	return nil
}

// listen opens the HTTP and, when grpcAddr is set, the gRPC listener.
// Nothing stays open on error.
func listen(httpAddr, grpcAddr string) (httpLis, grpcLis net.Listener, err error) {
	httpLis, err = net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	if grpcAddr == "" {
		return httpLis, nil, nil
	}
	grpcLis, err = net.Listen("tcp", grpcAddr)
	if err != nil {
		httpLis.Close()
		return nil, nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
	}
	return httpLis, grpcLis, nil
}
