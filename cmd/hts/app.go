package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/hts-classify/internal/api"
	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/config"
	"github.com/Veraticus/hts-classify/internal/engine"
	"github.com/Veraticus/hts-classify/internal/ingest"
	"github.com/Veraticus/hts-classify/internal/llm"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/search"
	"github.com/Veraticus/hts-classify/internal/service"
	"github.com/Veraticus/hts-classify/internal/session"
	"github.com/Veraticus/hts-classify/internal/storage"
	"github.com/Veraticus/hts-classify/internal/tariff"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// app bundles the collaborators a command needs.
type app struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	metrics  *metrics.Metrics
	resolver *tariff.Resolver
	searcher *search.Engine
	oracle   *llm.Oracle
	sessions service.SessionStore
	manager  *session.Manager
	closers  []func()
}

// loadConfig resolves the configuration from viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Configuration is invalid", err)
	}
	return cfg, nil
}

// openStore opens and migrates the database.
func openStore(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// newApp opens storage and builds the schedule index and search engine.
// The classifier pieces are added by withClassifier.
func newApp(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, store: store, metrics: m}
	a.closers = append(a.closers, func() { _ = store.Close() })

	entries, err := a.loadSchedule(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.resolver = tariff.NewResolver(tariff.NewIndex(entries))
	m.SetScheduleEntries(a.resolver.Index().Len())

	opts := search.DefaultOptions()
	opts.MaxResults = cfg.Classifier.MaxResults
	a.searcher = search.NewEngine(a.resolver,
		search.WithOptions(opts),
		search.WithRecorder(m))
	return a, nil
}

// loadSchedule returns the stored schedule, importing tariff.csv_path first
// when the table is empty.
func (a *app) loadSchedule(ctx context.Context) ([]model.TariffEntry, error) {
	count, err := a.store.CountEntries(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 && a.cfg.Tariff.CSVPath != "" {
		slog.Info("Schedule table is empty, importing", "path", a.cfg.Tariff.CSVPath)
		if _, err := importSchedule(ctx, a.store, a.cfg.Tariff.CSVPath, nil); err != nil {
			return nil, err
		}
	}

	entries, err := a.store.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, common.NewUserError("No tariff schedule loaded. Run: hts import <schedule.csv>", common.ErrNotFound)
	}
	return entries, nil
}

// importSchedule reads a schedule export and replaces the stored schedule.
func importSchedule(ctx context.Context, store *storage.SQLiteStorage, path string, progress func(done int)) (ingest.Result, error) {
	result, err := readSchedule(path)
	if err != nil {
		return ingest.Result{}, err
	}
	return result, saveSchedule(ctx, store, path, result, progress)
}

func readSchedule(path string) (ingest.Result, error) {
	result, err := ingest.ReadFile(path)
	if err != nil {
		return ingest.Result{}, err
	}
	if len(result.Entries) == 0 {
		return ingest.Result{}, fmt.Errorf("%w: %s contains no tariff entries", common.ErrInvalidInput, path)
	}
	return result, nil
}

func saveSchedule(ctx context.Context, store *storage.SQLiteStorage, path string, result ingest.Result, progress func(done int)) error {
	if err := store.SaveEntries(ctx, result.Entries, progress); err != nil {
		return err
	}
	if err := store.RecordImport(ctx, path, len(result.Entries)); err != nil {
		return err
	}
	slog.Info("Schedule imported", "path", path, "entries", len(result.Entries), "skipped", result.Skipped)
	return nil
}

// withClassifier adds the oracle, session store and session manager.
func (a *app) withClassifier(ctx context.Context) error {
	if a.cfg.LLM.Enabled() {
		oracle, err := llm.NewOracle(oracleConfig(a.cfg), slog.Default())
		if err != nil {
			return err
		}
		a.oracle = oracle
		a.closers = append(a.closers, oracle.Close)
	}

	store, closer, err := newSessionStore(ctx, a.cfg, a.store)
	if err != nil {
		return err
	}
	a.sessions = store
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	// A nil *llm.Oracle must not become a non-nil engine.Oracle.
	var oracle engine.Oracle
	if a.oracle != nil {
		oracle = a.oracle
	}
	machine := engine.New(a.searcher, oracle,
		engine.WithConfig(machineConfig(a.cfg)),
		engine.WithRecorder(a.metrics))
	a.manager = session.NewManager(machine, a.sessions)
	return nil
}

// oracleMode names the oracle for the health endpoint.
func (a *app) oracleMode() string {
	if a.oracle != nil {
		return api.OracleModeModel
	}
	return api.OracleModeFallback
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, db *storage.SQLiteStorage) (service.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendSQLite:
		return db, nil, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := session.NewRedisStore(client,
			session.WithPrefix(cfg.Redis.Prefix),
			session.WithTTL(cfg.Session.TTL))
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		return store, func() { _ = client.Close() }, nil
	case config.BackendMemory, "":
		store := session.NewMemoryStore(cfg.Session.TTL)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session backend %q", common.ErrInvalidConfig, cfg.Session.Backend)
	}
}

func oracleConfig(cfg *config.Config) llm.Config {
	return llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		MaxRetries:  cfg.LLM.MaxRetries,
		RetryDelay:  cfg.LLM.RetryDelay,
		CacheTTL:    cfg.LLM.CacheTTL,
		Timeout:     cfg.LLM.Timeout,
		RateLimit:   cfg.LLM.RateLimit,
		MaxTurns:    cfg.Classifier.MaxTurns,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
}

func machineConfig(cfg *config.Config) engine.Config {
	mc := engine.DefaultConfig()
	mc.HighConfidence = cfg.Classifier.HighConfidence
	mc.MaxTurns = cfg.Classifier.MaxTurns
	mc.MaxOptions = cfg.Classifier.MaxOptions
	if mc.ForcedOptions > mc.MaxOptions {
		mc.ForcedOptions = mc.MaxOptions
	}
	return mc
}
