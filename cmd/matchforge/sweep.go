package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchforge/matchforge/internal/config"
	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/logger"
	"github.com/matchforge/matchforge/internal/match"
	"github.com/matchforge/matchforge/internal/notify"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one incremental match sweep",
	Long:  `Score all complete engineers against active roles they have not been matched with yet, then exit. Useful for cron-driven deployments without the long-running server.`,
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	engine := match.NewEngine(db, client, notify.NewLogNotifier(log), log)
	sweep.New(db, engine, cfg.SweepInterval, log).RunCycle(ctx)
	return nil
}
