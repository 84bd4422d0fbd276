package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "/home/tester/.local/share/hts/hts.db", cfg.Database.Path)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.False(t, cfg.LLM.Enabled())
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.Server.TLS)
	assert.Equal(t, "/home/tester/.local/share/hts/certs", cfg.Server.CertDir)
	assert.InDelta(t, 85.0, cfg.Classifier.HighConfidence, 0.001)
	assert.Equal(t, 3, cfg.Classifier.MaxTurns)
	assert.Equal(t, 5, cfg.Classifier.MaxOptions)
	assert.Equal(t, 15, cfg.Classifier.MaxResults)
	assert.Equal(t, 2*time.Second, cfg.LLM.RetryDelay)
}

func TestLoadProviderKeyFromEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	v := newViper()
	v.Set("llm.provider", "Anthropic")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Enabled())
}

func TestLoadExplicitKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	v := newViper()
	v.Set("llm.provider", "openai")
	v.Set("llm.api_key", "from-config")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-config", cfg.LLM.APIKey)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		set     map[string]any
		wantErr error
		name    string
	}{
		{name: "provider without key", set: map[string]any{"llm.provider": "openai"}, wantErr: common.ErrMissingConfig},
		{name: "unknown provider", set: map[string]any{"llm.provider": "gemini"}, wantErr: common.ErrInvalidConfig},
		{name: "unknown backend", set: map[string]any{"session.backend": "etcd"}, wantErr: common.ErrInvalidConfig},
		{name: "threshold out of range", set: map[string]any{"classifier.high_confidence": 120}, wantErr: common.ErrInvalidConfig},
		{name: "zero turns", set: map[string]any{"classifier.max_turns": 0}, wantErr: common.ErrInvalidConfig},
		{name: "empty database path", set: map[string]any{"database.path": ""}, wantErr: common.ErrMissingConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HTS_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "hts.db"), ExpandPath("~/hts.db"))
	assert.Equal(t, "/data/hts.db", ExpandPath("$HTS_TEST_DIR/hts.db"))
	assert.Equal(t, "relative/hts.db", ExpandPath("relative/hts.db"))
}
