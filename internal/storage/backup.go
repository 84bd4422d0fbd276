package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBackupUnsupported is returned when backing up an in-memory database.
var ErrBackupUnsupported = errors.New("in-memory databases cannot be backed up")

// Backup writes a consistent copy of the database into dir and returns the
// path of the copy. It is taken before a schedule re-import replaces the
// stored entries.
func (s *SQLiteStorage) Backup(ctx context.Context, dir string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if s.dbPath == ":memory:" {
		return "", ErrBackupUnsupported
	}
	if dir == "" {
		dir = filepath.Join(filepath.Dir(s.dbPath), "backups")
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve backup directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(s.dbPath), filepath.Ext(s.dbPath))
	dest := filepath.Join(dir, fmt.Sprintf("%s-%s.db", base, time.Now().UTC().Format("20060102-150405.000")))
	if strings.ContainsAny(dest, `'";`) {
		return "", fmt.Errorf("invalid backup path %q: contains forbidden characters", dest)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// #nosec G201 - dest is built from validated components above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}
	return dest, nil
}
