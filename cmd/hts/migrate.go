package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hts-classify/internal/cli"
	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on start; this one exists to do it ahead of
time and to report the schema and import status.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show the schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		fmt.Fprintf(out, "Database:       %s\n", cfg.Database.Path)
		fmt.Fprintf(out, "Schema version: %d (latest %d)\n", current, storage.ExpectedSchemaVersion)
		if current == storage.ExpectedSchemaVersion {
			return printImportStatus(cmd, store)
		}
		return nil
	}

	slog.Info("Running database migrations", "database", cfg.Database.Path, "from", current, "to", storage.ExpectedSchemaVersion)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database schema is at version %d", storage.ExpectedSchemaVersion)))
	return nil
}

func printImportStatus(cmd *cobra.Command, store *storage.SQLiteStorage) error {
	last, err := store.LastImport(cmd.Context())
	if errors.Is(err, common.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "Schedule:       not imported")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schedule:       %d entries from %s at %s\n",
		last.EntryCount, last.Source, last.ImportedAt.Format("2006-01-02 15:04"))
	return nil
}
