package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mindan-edu/mathtutor/internal/domain"
)

type sessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error)
	Latest(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error)
	DeleteOwned(ctx context.Context, sessionID, userID uuid.UUID) error
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatMessage, error)
}

type SessionService struct {
	store sessionStore
}

func NewSessionService(store sessionStore) *SessionService {
	return &SessionService{store: store}
}

// ResolveActive is the session-selection policy for chat turns: the
// newest session by creation time, created lazily when the user has
// none. Concurrent first turns may each create a session; every caller
// proceeds with its own and duplicates are never merged.
func (s *SessionService) ResolveActive(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	session, err := s.store.Latest(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	session, err = s.store.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	slog.Info("새 채팅 세션 생성", "user_id", userID, "session_id", session.ID)
	return session, nil
}

// History returns every session of the user, newest first, each with
// its full chronological message log. Unbounded by design: the context
// window cap applies only to outbound provider requests.
func (s *SessionService) History(ctx context.Context, userID uuid.UUID) ([]domain.SessionHistory, error) {
	sessions, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := make([]domain.SessionHistory, 0, len(sessions))
	for _, session := range sessions {
		messages, err := s.store.ListMessages(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("history for session %s: %w", session.ID, err)
		}
		history = append(history, domain.SessionHistory{
			Session:  session,
			Messages: messages,
		})
	}
	return history, nil
}

// Delete removes an owned session and all of its messages.
func (s *SessionService) Delete(ctx context.Context, userID, sessionID uuid.UUID) error {
	if err := s.store.DeleteOwned(ctx, sessionID, userID); err != nil {
		return err
	}
	slog.Info("채팅 세션 삭제 완료", "session_id", sessionID)
	return nil
}
