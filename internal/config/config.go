// Package config loads the application configuration from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Logging    LoggingConfig
	Database   DatabaseConfig
	Tariff     TariffConfig
	LLM        LLMConfig
	Session    SessionConfig
	Redis      RedisConfig
	Server     ServerConfig
	Classifier ClassifierConfig
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level  string
	Format string
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// TariffConfig locates the schedule export to import.
type TariffConfig struct {
	CSVPath string
}

// LLMConfig configures the oracle provider.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Timeout     time.Duration
}

// Enabled reports whether an oracle provider is configured.
func (c LLMConfig) Enabled() bool {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	return p != "" && p != "none"
}

// SessionConfig selects where sessions live between turns.
type SessionConfig struct {
	Backend string
	TTL     time.Duration
}

// RedisConfig addresses the Redis session backend.
type RedisConfig struct {
	Addr     string
	Password string
	Prefix   string
	DB       int
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr         string
	CertDir      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TLS          bool
}

// ClassifierConfig tunes the search and classification thresholds.
type ClassifierConfig struct {
	HighConfidence float64
	MaxTurns       int
	MaxOptions     int
	MaxResults     int
}

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", "$HOME/.local/share/hts/hts.db")
	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 300)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", "2s")
	v.SetDefault("llm.cache_ttl", "15m")
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "hts:session:")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", "$HOME/.local/share/hts/certs")
	v.SetDefault("classifier.high_confidence", 85.0)
	v.SetDefault("classifier.max_turns", 3)
	v.SetDefault("classifier.max_options", 5)
	v.SetDefault("classifier.max_results", 15)
}

// Load resolves the configuration. Values come from v (config file or HTS_
// environment variables), then from provider environment variables such
// as OPENAI_API_KEY, then from defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Tariff:   TariffConfig{CSVPath: ExpandPath(v.GetString("tariff.csv_path"))},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
			CacheTTL:    v.GetDuration("llm.cache_ttl"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Session: SessionConfig{
			Backend: strings.ToLower(v.GetString("session.backend")),
			TTL:     v.GetDuration("session.ttl"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			CertDir:      ExpandPath(v.GetString("server.cert_dir")),
			TLS:          v.GetBool("server.tls"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Classifier: ClassifierConfig{
			HighConfidence: v.GetFloat64("classifier.high_confidence"),
			MaxTurns:       v.GetInt("classifier.max_turns"),
			MaxOptions:     v.GetInt("classifier.max_options"),
			MaxResults:     v.GetInt("classifier.max_results"),
		},
	}

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path is required", common.ErrMissingConfig)
	}
	switch c.LLM.Provider {
	case "", "none":
	case "openai", "anthropic", "claude":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%w: llm.api_key is required for provider %s", common.ErrMissingConfig, c.LLM.Provider)
		}
	default:
		return fmt.Errorf("%w: unknown llm.provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	switch c.Session.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: unknown session.backend %q", common.ErrInvalidConfig, c.Session.Backend)
	}
	if c.Classifier.HighConfidence <= 0 || c.Classifier.HighConfidence > 100 {
		return fmt.Errorf("%w: classifier.high_confidence must be in (0, 100]", common.ErrInvalidConfig)
	}
	if c.Classifier.MaxTurns < 1 || c.Classifier.MaxOptions < 1 || c.Classifier.MaxResults < 1 {
		return fmt.Errorf("%w: classifier limits must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
