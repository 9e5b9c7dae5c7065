package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps sessions in process memory. Values are copied on the way
// in and out so callers never share a History slice with the map.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

func newMemoryStore(cfg *storeConfig) *memoryStore {
	return &memoryStore{
		sessions: make(map[string]*Session),
		idleTTL:  cfg.idleTTL,
		now:      cfg.clock,
	}
}

func (s *memoryStore) Resolve(ctx context.Context, senderID string) (*Session, error) {
	if senderID == "" {
		return nil, ErrInvalidSender
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions == nil {
		return nil, ErrClosed
	}

	now := s.now()
	if existing, ok := s.sessions[senderID]; ok && !existing.Expired(now, s.idleTTL) {
		return existing.Clone(), nil
	}

	created := newSession(senderID, now)
	s.sessions[senderID] = created
	return created.Clone(), nil
}

func (s *memoryStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.SenderID == "" {
		return ErrInvalidSender
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions == nil {
		return ErrClosed
	}

	sess.UpdatedAt = s.now()
	s.sessions[sess.SenderID] = sess.Clone()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, senderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, senderID)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

// CleanupExpired removes idle sessions and returns how many were dropped.
func (s *memoryStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now, s.idleTTL) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Stats returns current session statistics.
func (s *memoryStore) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	active := 0
	turns := 0
	for _, sess := range s.sessions {
		if !sess.Expired(now, s.idleTTL) {
			active++
		}
		turns += len(sess.History)
	}

	return map[string]int{
		"total":  len(s.sessions),
		"active": active,
		"turns":  turns,
	}
}
