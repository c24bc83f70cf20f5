package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xtding233/summon-backend/internal/config"
	"github.com/xtding233/summon-backend/internal/logger"
)

const defaultConfigPath = "configs/server.yaml"

var (
	configPath string

	cfg       config.Server
	log       *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "summon-server",
	Short:         "Soldier summon backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log, logCloser = logger.New(cfg.Log, os.Stderr)
		slog.SetDefault(log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	def := defaultConfigPath
	if p := os.Getenv(config.EnvPrefix + "CONFIG"); p != "" {
		def = p
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "server config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, simulateCmd, oddsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
