package main

import (
	"context"
	"log/slog"

	"github.com/csportugues/portal/internal/config"
	"github.com/csportugues/portal/internal/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired sessions",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := user.NewStore(pool, cfg.Auth.SessionDuration)
	removed, err := store.CleanExpiredSessions(ctx)
	if err != nil {
		return err
	}

	slog.Info("expired sessions removed", "count", removed)
	return nil
}
