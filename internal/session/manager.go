package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/service"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Classifier advances a session by one user message.
type Classifier interface {
	Classify(ctx context.Context, session *model.ClassificationSession, message string) (model.Response, error)
}

// Manager loads a session, runs one classification turn, and saves the
// result. Turns for the same session never overlap.
type Manager struct {
	classifier Classifier
	store      service.SessionStore
	logger     *slog.Logger
	newID      func() string
	locks      map[string]*sessionLock
	mu         sync.Mutex
}

type sessionLock struct {
	sem  *semaphore.Weighted
	refs int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithIDGenerator overrides how new session ids are minted.
func WithIDGenerator(fn func() string) ManagerOption {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates a Manager.
func NewManager(classifier Classifier, store service.SessionStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		classifier: classifier,
		store:      store,
		logger:     slog.Default(),
		newID:      uuid.NewString,
		locks:      make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle runs message against the session named by id. An empty id starts
// a new session; the returned response carries the id to use next time.
func (m *Manager) Handle(ctx context.Context, id, message string) (model.Response, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = m.newID()
	}

	release, err := m.lock(ctx, id)
	if err != nil {
		return model.Response{}, err
	}
	defer release()

	current, err := m.store.GetSession(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		current = nil
	} else if err != nil {
		return model.Response{}, fmt.Errorf("failed to load session: %w", err)
	}

	resp, err := m.classifier.Classify(ctx, current, message)
	if err != nil {
		return model.Response{}, err
	}
	if resp.Session.ID == "" {
		resp.Session.ID = id
	}

	if err := m.store.SaveSession(ctx, resp.Session); err != nil {
		return model.Response{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.Info("Classification turn handled",
		"session", id,
		"status", resp.Status,
		"turn", resp.Session.TurnNumber)
	return resp, nil
}

// Clear forgets a session.
func (m *Manager) Clear(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: session id is required", common.ErrInvalidInput)
	}

	release, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if err := m.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.logger.Info("Session cleared", "session", id)
	return nil
}

// Get returns the stored session.
func (m *Manager) Get(ctx context.Context, id string) (*model.ClassificationSession, error) {
	return m.store.GetSession(ctx, id)
}

func (m *Manager) lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{sem: semaphore.NewWeighted(1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		m.unref(id, l)
		return nil, fmt.Errorf("waiting for session %s: %w", id, err)
	}

	return func() {
		l.sem.Release(1)
		m.unref(id, l)
	}, nil
}

func (m *Manager) unref(id string, l *sessionLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}
