package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/hts-classify/internal/api"
	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/config"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleCSV = `HTS Number,Indent,Description,Unit of Quantity,General Rate of Duty,Special Rate of Duty,Column 2 Rate of Duty
4011,0,"New pneumatic tyres, of rubber:",,,,
4011.10.10,2,Radial tyres for motor cars,"[""No.""]",4%,Free (A+),10%
4011.10.10.10,3,Having a rim diameter under 33 cm,"[""No.""]",,,
,1,Other:,,,,
8517.13.00,2,Smartphones,"[""No.""]",Free,,35%
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("database.path", filepath.Join(t.TempDir(), "hts.db"))
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func writeSchedule(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte(scheduleCSV), 0o600))
	return path
}

func TestNewAppImportsConfiguredSchedule(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Tariff.CSVPath = writeSchedule(t)

	a, err := newApp(ctx, cfg, metrics.New())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 4, a.resolver.Index().Len())

	last, err := a.store.LastImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.Tariff.CSVPath, last.Source)
	assert.Equal(t, 4, last.EntryCount)

	duty, err := a.resolver.Resolve("4011101010")
	require.NoError(t, err)
	assert.Equal(t, "4%", duty.EffectiveRate)
	assert.Equal(t, model.SourceInherited, duty.Source)

	require.NoError(t, a.withClassifier(ctx))
	assert.Nil(t, a.oracle)
	assert.Equal(t, api.OracleModeFallback, a.oracleMode())

	resp, err := a.manager.Handle(ctx, "", "smartphones")
	require.NoError(t, err)
	require.NotNil(t, resp.Session)
	assert.NotEmpty(t, resp.Session.ID)
}

func TestNewAppWithoutSchedule(t *testing.T) {
	_, err := newApp(context.Background(), testConfig(t), metrics.New())
	require.Error(t, err)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, userErr.UserMessage, "hts import")
}

func TestImportScheduleRejectsEmptyFile(t *testing.T) {
	ctx := context.Background()
	store, err := openStore(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("HTS Number,Description\n,Heading only\n"), 0o600))

	_, err = importSchedule(ctx, store, path, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNewSessionStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg.Session.Backend = config.BackendSQLite
	store, closer, err := newSessionStore(ctx, cfg, db)
	require.NoError(t, err)
	assert.Same(t, db, store)
	assert.Nil(t, closer)

	cfg.Session.Backend = config.BackendMemory
	store, closer, err = newSessionStore(ctx, cfg, db)
	require.NoError(t, err)
	assert.NotNil(t, store)
	require.NotNil(t, closer)
	closer()

	cfg.Session.Backend = "etcd"
	_, _, err = newSessionStore(ctx, cfg, db)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestMachineConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier.HighConfidence = 90
	cfg.Classifier.MaxTurns = 4
	cfg.Classifier.MaxOptions = 2

	mc := machineConfig(cfg)
	assert.InDelta(t, 90.0, mc.HighConfidence, 0.001)
	assert.Equal(t, 4, mc.MaxTurns)
	assert.Equal(t, 2, mc.MaxOptions)
	assert.Equal(t, 2, mc.ForcedOptions)
	assert.Equal(t, 3, mc.QuestionCount)
}

func TestOracleConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	cfg.Classifier.MaxTurns = 5

	oc := oracleConfig(cfg)
	assert.Equal(t, "openai", oc.Provider)
	assert.Equal(t, "sk-test", oc.APIKey)
	assert.Equal(t, 5, oc.MaxTurns)
	assert.Equal(t, 30*time.Second, oc.Timeout)
	assert.Equal(t, 60, oc.RateLimit)
}

func TestTurnTimeout(t *testing.T) {
	assert.Equal(t, 240*time.Second, turnTimeout(30*time.Second, 3))
	assert.Equal(t, 120*time.Second, turnTimeout(0, 0))
}

func TestChapterListingAndFilter(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Tariff.CSVPath = writeSchedule(t)
	a, err := newApp(ctx, cfg, metrics.New())
	require.NoError(t, err)
	defer a.Close()

	listing := chapterListing(a.resolver, "40")
	require.Len(t, listing, 2)
	assert.Equal(t, "4011.10.10", listing[0].Code)
	assert.Equal(t, "4011.10.10.10", listing[1].Code)
	assert.Equal(t, "4%", listing[0].Duty.EffectiveRate)
	assert.Equal(t, "Free (A+)", listing[0].SpecialRate)

	filtered := filterChapter([]model.MatchCandidate{
		{Code: "4011.10.10", Chapter: "40"},
		{Code: "8517.13.00", Chapter: "85"},
	}, "85")
	require.Len(t, filtered, 1)
	assert.Equal(t, "8517.13.00", filtered[0].Code)
}

func TestParseCustomsValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "1250", want: "1250"},
		{raw: " 1,250.50 ", want: "1250.5"},
		{raw: "$99.99", want: "99.99"},
		{raw: "0", want: "0"},
		{raw: "twelve", wantErr: true},
		{raw: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseCustomsValue(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
