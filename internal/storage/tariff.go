package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/tariff"
)

// progressEvery is how many inserted rows pass between progress callbacks.
const progressEvery = 500

// ImportRecord describes one load of the schedule.
type ImportRecord struct {
	ImportedAt time.Time
	Source     string
	EntryCount int
}

// SaveEntries replaces the stored schedule with entries, preserving order.
func (s *SQLiteStorage) SaveEntries(ctx context.Context, entries []model.TariffEntry, progress func(done int)) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tariff_entries`); err != nil {
		return fmt.Errorf("failed to clear tariff entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tariff_entries (position, code, digits, description, general_rate, special_rate, column2_rate, unit, indent_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.Code, tariff.Digits(e.Code), e.Description,
			e.GeneralRate, e.SpecialRate, e.Column2Rate, e.Unit, e.IndentLevel); err != nil {
			return fmt.Errorf("failed to insert tariff entry %s: %w", e.Code, err)
		}
		if progress != nil && (i+1)%progressEvery == 0 {
			progress(i + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tariff entries: %w", err)
	}
	if progress != nil && len(entries)%progressEvery != 0 {
		progress(len(entries))
	}
	return nil
}

// LoadEntries returns the stored schedule in its original order.
func (s *SQLiteStorage) LoadEntries(ctx context.Context) ([]model.TariffEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, description, general_rate, special_rate, column2_rate, unit, indent_level
		FROM tariff_entries
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tariff entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.TariffEntry
	for rows.Next() {
		var e model.TariffEntry
		if err := rows.Scan(&e.Code, &e.Description, &e.GeneralRate, &e.SpecialRate,
			&e.Column2Rate, &e.Unit, &e.IndentLevel); err != nil {
			return nil, fmt.Errorf("failed to scan tariff entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tariff entries: %w", err)
	}
	return entries, nil
}

// CountEntries returns the number of stored schedule lines.
func (s *SQLiteStorage) CountEntries(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tariff_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tariff entries: %w", err)
	}
	return n, nil
}

// RecordImport notes a completed schedule load.
func (s *SQLiteStorage) RecordImport(ctx context.Context, source string, count int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(source, "source"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_imports (source, entry_count, imported_at) VALUES (?, ?, ?)`,
		source, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// LastImport returns the most recent schedule load.
func (s *SQLiteStorage) LastImport(ctx context.Context) (*ImportRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var rec ImportRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT source, entry_count, imported_at
		FROM schedule_imports
		ORDER BY id DESC
		LIMIT 1`).Scan(&rec.Source, &rec.EntryCount, &rec.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no schedule import recorded: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last import: %w", err)
	}
	return &rec, nil
}
