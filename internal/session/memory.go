package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/service"
)

// MemoryStore keeps sessions in process memory and forgets sessions that
// have not been updated within the TTL.
type MemoryStore struct {
	now             func() time.Time
	sessions        map[string]*model.ClassificationSession
	stopCh          chan struct{}
	stop            sync.Once
	cleanupInterval time.Duration
	ttl             time.Duration
	mu              sync.RWMutex
}

var _ service.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store. A zero ttl keeps sessions for 24 hours.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &MemoryStore{
		now:             time.Now,
		sessions:        make(map[string]*model.ClassificationSession),
		cleanupInterval: time.Hour,
		ttl:             ttl,
		stopCh:          make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// GetSession returns a copy of the stored session.
func (s *MemoryStore) GetSession(_ context.Context, id string) (*model.ClassificationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil, fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	return session.Clone(), nil
}

// SaveSession stores a copy of session.
func (s *MemoryStore) SaveSession(_ context.Context, session *model.ClassificationSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("%w: session ID is required", common.ErrInvalidInput)
	}

	c := session.Clone()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.ID] = c
	return nil
}

// DeleteSession removes a session if present.
func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports how many sessions are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(session *model.ClassificationSession) bool {
	return s.now().Sub(session.UpdatedAt) > s.ttl
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.stop.Do(func() { close(s.stopCh) })
}
