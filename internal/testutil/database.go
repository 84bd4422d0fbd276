package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/service"
)

// SeedSchedule loads entries into store, or the default Schedule when
// entries is empty, and fails the test on error.
//
// Example:
//
//	store, _ := storage.NewSQLiteStorage(":memory:")
//	_ = store.Migrate(ctx)
//	testutil.SeedSchedule(t, store)
func SeedSchedule(t testing.TB, store service.TariffStore, entries ...model.TariffEntry) []model.TariffEntry {
	t.Helper()

	if len(entries) == 0 {
		entries = Schedule()
	}
	if err := store.SaveEntries(context.Background(), entries, nil); err != nil {
		t.Fatalf("failed to seed schedule: %v", err)
	}
	return entries
}
