package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/deckforge/internal/config"
	"github.com/phrazzld/deckforge/internal/platform/logger"
	"github.com/phrazzld/deckforge/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// ErrNoDatabase is returned when a migration is requested without a database URL.
var ErrNoDatabase = errors.New("database URL is required for migrations")

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:       "migrate <up|down|reset|status|version>",
		Short:     "Manage the deck database schema",
		ValidArgs: postgres.MigrationCommands,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, log, err := migrationTarget(opts, databaseURL, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runMigration(cmd.Context(), url, args[0], log)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "database URL (default: from configuration)")
	return cmd
}

// migrationTarget resolves the database URL. An explicit URL skips loading the
// full configuration so migrations run without generation credentials.
func migrationTarget(opts *rootOptions, databaseURL string, logOut io.Writer) (string, *slog.Logger, error) {
	if databaseURL != "" {
		log, err := logger.SetupWithWriter(logOut, config.Default().Server)
		if err != nil {
			return "", nil, err
		}
		return databaseURL, log, nil
	}

	cfg, log, err := opts.loadConfig(logOut)
	if err != nil {
		return "", nil, err
	}
	if cfg.Database.URL == "" {
		return "", nil, ErrNoDatabase
	}
	return cfg.Database.URL, log, nil
}

func runMigration(ctx context.Context, databaseURL, command string, log *slog.Logger) error {
	log.Info("running migration",
		"command", command,
		"database", postgres.MaskDatabaseURL(databaseURL))

	db, err := postgres.Open(ctx, databaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database connection", "error", closeErr)
		}
	}()

	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	log.Info("migration completed", "command", command)
	return nil
}
