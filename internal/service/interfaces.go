// Package service defines the interfaces shared between the application layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/hts-classify/internal/model"
)

// TariffStore persists the tariff schedule.
type TariffStore interface {
	SaveEntries(ctx context.Context, entries []model.TariffEntry, progress func(done int)) error
	LoadEntries(ctx context.Context) ([]model.TariffEntry, error)
	CountEntries(ctx context.Context) (int, error)
}

// SessionStore persists classification sessions between turns.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*model.ClassificationSession, error)
	SaveSession(ctx context.Context, session *model.ClassificationSession) error
	DeleteSession(ctx context.Context, id string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
