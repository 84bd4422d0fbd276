package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hts-classify/internal/cli"
	"github.com/Veraticus/hts-classify/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [schedule.csv|schedule.json]",
		Short: "Import the tariff schedule",
		Long: `Load a USITC Harmonized Tariff Schedule export into the local database.

The stored schedule is replaced. When a schedule is already present it is
backed up first. Without an argument the path configured as
tariff.csv_path is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("no-backup", false, "Skip the backup of an existing schedule")
	cmd.Flags().String("backup-dir", "", "Directory for backups (default: next to the database)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	noBackup, _ := cmd.Flags().GetBool("no-backup")
	backupDir, _ := cmd.Flags().GetString("backup-dir")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Tariff.CSVPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no schedule file given and tariff.csv_path is not set")
	}

	result, err := readSchedule(path)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	existing, err := store.CountEntries(ctx)
	if err != nil {
		return err
	}
	if existing > 0 && !noBackup {
		backup, backupErr := store.Backup(ctx, backupDir)
		switch {
		case errors.Is(backupErr, storage.ErrBackupUnsupported):
			slog.Warn("Skipping backup", "reason", backupErr)
		case backupErr != nil:
			return fmt.Errorf("failed to back up existing schedule: %w", backupErr)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Backed up existing schedule to "+backup))
		}
	}

	bar := progressbar.Default(int64(len(result.Entries)), "Importing schedule")
	if err := saveSchedule(ctx, store, path, result, func(done int) { _ = bar.Set(done) }); err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"Imported %d entries from %s (%d rows without a code skipped)",
		len(result.Entries), path, result.Skipped)))
	return nil
}
