package sessions

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"moodbot/domain"
)

// FallbackStore пишет в основное хранилище (Redis) и дублирует в запасное (память).
// Если основное недоступно, диалог продолжается на запасном.
// Пользователи, чья запись в основное не прошла, помечаются: для них верна только
// копия в запасном, пока она не будет перенесена обратно
type FallbackStore struct {
	primary  Store
	fallback Store

	mu    sync.Mutex
	stale map[int64]struct{}
}

func NewFallbackStore(primary, fallback Store) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
		stale:    make(map[int64]struct{}),
	}
}

func (s *FallbackStore) Get(ctx context.Context, userID int64) (Session, error) {
	if s.isStale(userID) {
		return s.resync(ctx, userID)
	}

	session, err := s.primary.Get(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Couldn't get session from primary store")
	}
	return s.fallback.Get(ctx, userID)
}

// resync отдает копию из запасного хранилища и пытается вернуть ее в основное
func (s *FallbackStore) resync(ctx context.Context, userID int64) (Session, error) {
	session, err := s.fallback.Get(ctx, userID)
	switch {
	case err == nil:
		if errPut := s.primary.Put(ctx, userID, session); errPut == nil {
			s.markFresh(userID)
			log.Info().Int64("user_id", userID).Msg("Session restored to primary store")
		}
	case errors.Is(err, domain.ErrSessionNotFound):
		if errDel := s.primary.Delete(ctx, userID); errDel == nil {
			s.markFresh(userID)
		}
	}
	return session, err
}

// Сохранить сессию в оба хранилища. Ошибка только если не удалось сохранить никуда
func (s *FallbackStore) Put(ctx context.Context, userID int64, session Session) error {
	errPrimary := s.primary.Put(ctx, userID, session)
	if errPrimary != nil {
		log.Warn().Err(errPrimary).Int64("user_id", userID).Msg("Couldn't save session to primary store")
	}
	errFallback := s.fallback.Put(ctx, userID, session)
	if errPrimary != nil && errFallback != nil {
		return errors.Join(errPrimary, errFallback)
	}
	s.track(userID, errPrimary)
	return nil
}

func (s *FallbackStore) Delete(ctx context.Context, userID int64) error {
	errPrimary := s.primary.Delete(ctx, userID)
	if errPrimary != nil {
		log.Warn().Err(errPrimary).Int64("user_id", userID).Msg("Couldn't delete session from primary store")
	}
	errFallback := s.fallback.Delete(ctx, userID)
	if errPrimary != nil && errFallback != nil {
		return errors.Join(errPrimary, errFallback)
	}
	s.track(userID, errPrimary)
	return nil
}

func (s *FallbackStore) track(userID int64, errPrimary error) {
	if errPrimary != nil {
		s.mu.Lock()
		s.stale[userID] = struct{}{}
		s.mu.Unlock()
		return
	}
	s.markFresh(userID)
}

func (s *FallbackStore) markFresh(userID int64) {
	s.mu.Lock()
	delete(s.stale, userID)
	s.mu.Unlock()
}

func (s *FallbackStore) isStale(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stale[userID]
	return ok
}
