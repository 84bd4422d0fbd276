package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/engine"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOracle(t *testing.T, cfg Config, fn ClientFunc) *Oracle {
	t.Helper()
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 6000
	}
	o := NewOracleWithClient(fn, cfg, common.DiscardLogger())
	t.Cleanup(o.Close)
	return o
}

func TestOracleConfirm(t *testing.T) {
	var seen Request
	o := newTestOracle(t, Config{}, func(_ context.Context, req Request) (string, error) {
		seen = req
		return `"New pneumatic rubber tires for motor vehicles"`, nil
	})

	got, err := o.Confirm(context.Background(), "tires")
	require.NoError(t, err)
	assert.Equal(t, "New pneumatic rubber tires for motor vehicles", got)
	assert.Contains(t, seen.Prompt, `"tires"`)
	assert.Equal(t, confirmMaxTokens, seen.MaxTokens)
}

func TestOracleGenerateQuestions(t *testing.T) {
	var seen Request
	o := newTestOracle(t, Config{}, func(_ context.Context, req Request) (string, error) {
		seen = req
		return "What is the primary material of the tires?\nAre these tires for passenger cars?\nWhat is the rim diameter in inches?", nil
	})

	qs, err := o.GenerateQuestions(context.Background(), engine.QuestionRequest{
		Product: "New pneumatic rubber tires",
		Focus:   "Basic product identification",
		Turn:    1,
		Count:   3,
		Candidates: []model.MatchCandidate{
			{Code: "4011.10.10", Description: "Radial tyres for motor cars", ConfidenceScore: 72},
		},
	})
	require.NoError(t, err)
	assert.Len(t, qs, 3)
	assert.Contains(t, seen.Prompt, "Turn: 1 of 3 maximum")
	assert.Contains(t, seen.Prompt, "4011.10.10 (72%)")
	assert.Contains(t, seen.Prompt, "Basic product identification")
}

func TestOracleGenerateQuestionsEmptyReply(t *testing.T) {
	o := newTestOracle(t, Config{}, func(context.Context, Request) (string, error) {
		return "ok", nil
	})
	_, err := o.GenerateQuestions(context.Background(), engine.QuestionRequest{Turn: 1, Count: 3})
	assert.ErrorIs(t, err, common.ErrEmptyResponse)
}

func TestOracleMatchSelection(t *testing.T) {
	options := []model.MatchCandidate{
		{Code: "4011.10.10", Description: "Radial tyres for motor cars"},
		{Code: "4011.20.10", Description: "Radial tyres for buses or trucks"},
	}
	o := newTestOracle(t, Config{}, func(_ context.Context, req Request) (string, error) {
		if strings.Contains(req.Prompt, "the truck one") {
			return "2", nil
		}
		return "none", nil
	})

	idx, found, err := o.MatchSelection(context.Background(), "the truck one", options)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	_, found, err = o.MatchSelection(context.Background(), "something else", options)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = o.MatchSelection(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOracleCachesReplies(t *testing.T) {
	var calls atomic.Int32
	o := newTestOracle(t, Config{}, func(context.Context, Request) (string, error) {
		calls.Add(1)
		return "Wooden furniture seating", nil
	})

	for i := 0; i < 3; i++ {
		_, err := o.Confirm(context.Background(), "wooden chairs")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestOracleRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	o := newTestOracle(t, Config{MaxRetries: 3}, func(context.Context, Request) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("connection reset")
		}
		return "Laptop computers", nil
	})

	got, err := o.Confirm(context.Background(), "laptop")
	require.NoError(t, err)
	assert.Equal(t, "Laptop computers", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOraclePermanentFailureStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	o := newTestOracle(t, Config{MaxRetries: 3}, func(context.Context, Request) (string, error) {
		calls.Add(1)
		return "", common.Permanent(errors.New("invalid api key"))
	})

	_, err := o.Confirm(context.Background(), "laptop")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOracleUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOracleCircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	o := newTestOracle(t, Config{MaxRetries: 1, BreakerFailures: 2, BreakerCooldown: time.Hour},
		func(context.Context, Request) (string, error) {
			calls.Add(1)
			return "", errors.New("upstream down")
		})

	for _, product := range []string{"a", "b"} {
		_, err := o.Confirm(context.Background(), product)
		require.Error(t, err)
	}
	require.Equal(t, int32(2), calls.Load())

	_, err := o.Confirm(context.Background(), "c")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, err, common.ErrOracleUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}
