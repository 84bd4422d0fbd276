// Package storage provides SQLite persistence for the tariff schedule and
// classification sessions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hts-classify/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidEntry   = errors.New("invalid tariff entry")
	ErrInvalidSession = errors.New("invalid classification session")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateEntries(entries []model.TariffEntry) error {
	if entries == nil {
		return fmt.Errorf("%w: entries", ErrNilParameter)
	}
	for i := range entries {
		if strings.TrimSpace(entries[i].Code) == "" {
			return fmt.Errorf("%w: entry %d has no code", ErrInvalidEntry, i)
		}
		if entries[i].IndentLevel < 0 {
			return fmt.Errorf("%w: entry %s has negative indent", ErrInvalidEntry, entries[i].Code)
		}
	}
	return nil
}

func validateSession(session *model.ClassificationSession) error {
	if session == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSession)
	}
	switch session.Status {
	case "", model.SessionGathering, model.SessionAwaitingClarification, model.SessionAwaitingSelection, model.SessionComplete:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSession, session.Status)
	}
	return nil
}
