package sessions

import (
	"context"
	"sync"
	"time"

	"moodbot/domain"
)

const DefaultTTL = 24 * time.Hour

// MemoryStore держит сессии в памяти процесса. Сессии старше ttl считаются брошенными
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	if s.expired(session) {
		s.mu.Lock()
		// за время без блокировки сессию могли обновить
		if current, ok := s.sessions[userID]; ok && s.expired(current) {
			delete(s.sessions, userID)
		}
		s.mu.Unlock()
		return Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) Put(_ context.Context, userID int64, session Session) error {
	// срок жизни считается по часам хранилища, а не по времени из сессии
	session.UpdatedAt = s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// Len возвращает число живых и еще не вычищенных сессий
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(session Session) bool {
	return s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl
}
