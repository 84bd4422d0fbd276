package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/engine"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/service"
	"github.com/sony/gobreaker"
)

// Config holds configuration for the model-backed oracle.
type Config struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	MaxRetries      int
	RetryDelay      time.Duration
	CacheTTL        time.Duration
	Timeout         time.Duration
	BreakerCooldown time.Duration
	RateLimit       int
	BreakerFailures int
	MaxTurns        int
	Temperature     float64
	MaxTokens       int
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

// Oracle answers the classification machine's judgment calls with a
// language model.
type Oracle struct {
	client   Client
	limiter  *rateLimiter
	cache    *responseCache
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
	retry    service.RetryOptions
	maxTurns int
}

var _ engine.Oracle = (*Oracle)(nil)

// NewOracle builds an Oracle for the configured provider.
func NewOracle(cfg Config, logger *slog.Logger) (*Oracle, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewOracleWithClient(client, cfg, logger), nil
}

// NewOracleWithClient builds an Oracle around an existing Client.
func NewOracleWithClient(client Client, cfg Config, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = engine.DefaultConfig().MaxTurns
	}
	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	o := &Oracle{
		client:   client,
		limiter:  newRateLimiter(cfg.RateLimit),
		cache:    newResponseCache(cfg.CacheTTL),
		logger:   logger,
		maxTurns: maxTurns,
		retry: service.RetryOptions{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
	o.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "oracle",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Oracle circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return o
}

// Confirm restates a raw product description in customs terms.
func (o *Oracle) Confirm(ctx context.Context, raw string) (string, error) {
	text, err := o.complete(ctx, "confirm", Request{
		System:    brokerPersona,
		Prompt:    buildConfirmPrompt(raw),
		MaxTokens: confirmMaxTokens,
	})
	if err != nil {
		return "", err
	}

	confirmed := strings.Trim(cleanMarkdownWrapper(text), `"' `)
	if confirmed == "" {
		return "", common.ErrEmptyResponse
	}
	return confirmed, nil
}

// GenerateQuestions asks for clarifying questions for the current turn.
func (o *Oracle) GenerateQuestions(ctx context.Context, req engine.QuestionRequest) ([]string, error) {
	text, err := o.complete(ctx, "questions", Request{
		System:    brokerPersona,
		Prompt:    buildQuestionsPrompt(req, o.maxTurns),
		MaxTokens: questionsMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	questions := parseQuestions(text)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in reply: %w", common.ErrEmptyResponse)
	}
	return questions, nil
}

// MatchSelection maps a free-text reply onto one of the options.
func (o *Oracle) MatchSelection(ctx context.Context, reply string, options []model.MatchCandidate) (int, bool, error) {
	if len(options) == 0 {
		return 0, false, nil
	}

	text, err := o.complete(ctx, "selection", Request{
		Prompt:    buildSelectionPrompt(reply, options),
		MaxTokens: selectionMaxTokens,
	})
	if err != nil {
		return 0, false, err
	}
	return parseSelection(text, len(options))
}

// Close releases the background goroutines.
func (o *Oracle) Close() {
	o.cache.Close()
	o.limiter.Close()
}

func (o *Oracle) complete(ctx context.Context, operation string, req Request) (string, error) {
	key := operation + "\x00" + req.System + "\x00" + req.Prompt
	if cached, ok := o.cache.get(key); ok {
		o.logger.Debug("Oracle cache hit", "operation", operation)
		return cached, nil
	}

	result, err := o.breaker.Execute(func() (interface{}, error) {
		var text string
		err := common.WithRetry(ctx, func() error {
			if err := o.limiter.wait(ctx); err != nil {
				return common.Permanent(err)
			}
			out, err := o.client.Complete(ctx, req)
			if err != nil {
				return err
			}
			text = out
			return nil
		}, o.retry)
		return text, err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", common.ErrOracleUnavailable, operation, err)
	}

	text, _ := result.(string)
	o.cache.set(key, text)
	return text, nil
}
