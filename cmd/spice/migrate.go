package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-assistant/internal/config"
	"github.com/Veraticus/spice-assistant/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has the ledger, account and
conversation tables the assistant needs.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	dbPath := settings.Database.Path

	slog.Info("Starting database migration", "database", dbPath, "status_only", status)

	if err := config.EnsureParentDir(dbPath); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if status {
		fmt.Fprintf(cmd.OutOrStdout(), "Database:        %s\n", dbPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", current)
		fmt.Fprintf(cmd.OutOrStdout(), "Latest version:  %d\n", storage.ExpectedSchemaVersion)
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Database migrations completed", "from", current, "to", storage.ExpectedSchemaVersion)
	return nil
}
