package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func sampleEntries() []model.TariffEntry {
	return []model.TariffEntry{
		{Code: "4011", Description: "New pneumatic tyres, of rubber", IndentLevel: 0},
		{Code: "4011.10", Description: "Of a kind used on motor cars", IndentLevel: 1},
		{Code: "4011.10.10", Description: "Radial tyres", GeneralRate: "4%", SpecialRate: "Free (A,AU)", Column2Rate: "10%", Unit: "No.", IndentLevel: 2},
		{Code: "4011.10.50", Description: "Other", GeneralRate: "4%", Unit: "No.", IndentLevel: 2},
	}
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSaveAndLoadEntries(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	entries := sampleEntries()

	var reported []int
	require.NoError(t, store.SaveEntries(ctx, entries, func(done int) { reported = append(reported, done) }))
	assert.Equal(t, []int{4}, reported)

	loaded, err := store.LoadEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestLoadSeededSchedule(t *testing.T) {
	store := createTestStorage(t)
	seeded := testutil.SeedSchedule(t, store)

	loaded, err := store.LoadEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seeded, loaded)
}

func TestSaveEntriesReplacesSchedule(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntries(ctx, sampleEntries(), nil))
	replacement := []model.TariffEntry{{Code: "9401", Description: "Seats", IndentLevel: 0}}
	require.NoError(t, store.SaveEntries(ctx, replacement, nil))

	loaded, err := store.LoadEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, loaded)
}

func TestSaveEntriesProgressBatches(t *testing.T) {
	store := createTestStorage(t)
	entries := make([]model.TariffEntry, 1200)
	for i := range entries {
		entries[i] = model.TariffEntry{Code: "9999", Description: "filler"}
	}

	var reported []int
	require.NoError(t, store.SaveEntries(context.Background(), entries, func(done int) { reported = append(reported, done) }))
	assert.Equal(t, []int{500, 1000, 1200}, reported)
}

func TestSaveEntriesValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveEntries(ctx, nil, nil), ErrNilParameter)
	assert.ErrorIs(t, store.SaveEntries(ctx, []model.TariffEntry{{Description: "no code"}}, nil), ErrInvalidEntry)

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportRecords(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.LastImport(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.RecordImport(ctx, "htsdata.csv", 10))
	require.NoError(t, store.RecordImport(ctx, "htsdata-2025.csv", 12))

	rec, err := store.LastImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "htsdata-2025.csv", rec.Source)
	assert.Equal(t, 12, rec.EntryCount)
	assert.False(t, rec.ImportedAt.IsZero())
}

func TestSessionRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	session := &model.ClassificationSession{
		ID:               "abc",
		Status:           model.SessionAwaitingClarification,
		ConfirmedProduct: "New pneumatic rubber tires",
		History:          []model.Utterance{{Text: "tires", Turn: 1}},
		Candidates:       []model.MatchCandidate{{Code: "4011.10.10", Description: "Radial tyres", ConfidenceScore: 72}},
		PendingQuestions: []string{"What is the primary material?"},
		TurnNumber:       1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Status, got.Status)
	assert.Equal(t, session.History, got.History)
	assert.Equal(t, session.PendingQuestions, got.PendingQuestions)
	assert.Equal(t, "4011.10.10", got.Candidates[0].Code)
	assert.True(t, now.Equal(got.CreatedAt))

	session.Status = model.SessionComplete
	session.FinalResult = &session.Candidates[0]
	require.NoError(t, store.SaveSession(ctx, session))

	got, err = store.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, model.SessionComplete, got.Status)
	require.NotNil(t, got.FinalResult)
	assert.Equal(t, "4011.10.10", got.FinalResult.Code)

	require.NoError(t, store.DeleteSession(ctx, "abc"))
	_, err = store.GetSession(ctx, "abc")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.DeleteSession(ctx, "abc"))
}

func TestSaveSessionValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveSession(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, store.SaveSession(ctx, &model.ClassificationSession{}), ErrInvalidSession)
	assert.ErrorIs(t, store.SaveSession(ctx, &model.ClassificationSession{ID: "x", Status: "thinking"}), ErrInvalidSession)
}

func TestPruneSessions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveSession(ctx, &model.ClassificationSession{ID: "old", CreatedAt: old, UpdatedAt: old}))
	require.NoError(t, store.SaveSession(ctx, &model.ClassificationSession{ID: "new", CreatedAt: recent, UpdatedAt: recent}))

	n, err := store.PruneSessions(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetSession(ctx, "old")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.GetSession(ctx, "new")
	assert.NoError(t, err)
}

func TestBackup(t *testing.T) {
	ctx := context.Background()

	t.Run("file database", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewSQLiteStorage(filepath.Join(dir, "hts.db"))
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.SaveEntries(ctx, sampleEntries(), nil))

		dest, err := store.Backup(ctx, filepath.Join(dir, "backups"))
		require.NoError(t, err)

		copied, err := NewSQLiteStorage(dest)
		require.NoError(t, err)
		defer func() { _ = copied.Close() }()
		n, err := copied.CountEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("memory database", func(t *testing.T) {
		store := createTestStorage(t)
		_, err := store.Backup(ctx, t.TempDir())
		assert.ErrorIs(t, err, ErrBackupUnsupported)
	})
}
