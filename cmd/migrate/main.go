package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pageza/mealmate/backend/config"
	"github.com/pageza/mealmate/backend/internal/database"
	"github.com/pageza/mealmate/backend/internal/logging"
	"github.com/pageza/mealmate/backend/migrations"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or revert the postgres schema",
	Long:  "migrate runs the SQL migrations in the migrations package against DATABASE_URL, or the database named by the application config.",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator) error {
			applied, err := m.Up(ctx)
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied migration: %s\n", name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			}
			return nil
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the last applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator) error {
			name, err := m.Rollback(ctx)
			if errors.Is(err, database.ErrNothingToRollback) {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations to rollback")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully rolled back migration: %s\n", name)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and when they were applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator) error {
			status, err := m.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "VERSION\tNAME\tAPPLIED")
			for _, s := range status {
				applied := "pending"
				if s.AppliedAt != nil {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.Version, s.Name, applied)
			}
			return nil
		})
	},
}

func resolveDatabaseURL() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", fmt.Errorf("DATABASE_URL is not set and the application config failed to load: %w", err)
	}
	if cfg.DBDriver != config.DriverPostgres {
		return "", fmt.Errorf("migrations only run against postgres, configured driver is %q", cfg.DBDriver)
	}
	return cfg.DatabaseURL(), nil
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *database.Migrator) error) error {
	dsn, err := resolveDatabaseURL()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger, err := logging.New("info", false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return fn(cmd.Context(), database.NewMigrator(db, migrations.Files, logger))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	rootCmd.AddCommand(upCmd, rollbackCmd, statusCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
