package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindan-edu/mathtutor/internal/domain"
)

type memSessionStore struct {
	mu       sync.Mutex
	sessions []domain.ChatSession
	messages map[uuid.UUID][]domain.ChatMessage
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{messages: make(map[uuid.UUID][]domain.ChatMessage)}
}

func (m *memSessionStore) Create(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.ChatSession{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	m.sessions = append(m.sessions, s)
	return &s, nil
}

func (m *memSessionStore) Latest(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.ChatSession
	for i := range m.sessions {
		s := &m.sessions[i]
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrSessionNotFound
	}
	out := *latest
	return &out, nil
}

func (m *memSessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChatSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessionStore) DeleteOwned(ctx context.Context, sessionID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			delete(m.messages, sessionID)
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

func (m *memSessionStore) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[sessionID], nil
}

func TestResolveActiveCreatesWhenNone(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store)
	userID := uuid.New()

	session, err := svc.ResolveActive(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.Len(t, store.sessions, 1)
}

func TestResolveActiveReturnsNewest(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store)
	userID := uuid.New()

	store.sessions = append(store.sessions,
		domain.ChatSession{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().Add(-time.Hour)},
	)
	newest := domain.ChatSession{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	store.sessions = append(store.sessions, newest)

	session, err := svc.ResolveActive(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, session.ID)
	assert.Len(t, store.sessions, 2, "no new session for a user who already has one")
}

func TestResolveActiveIgnoresOtherUsers(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store)

	other := domain.ChatSession{ID: uuid.New(), UserID: uuid.New(), CreatedAt: time.Now()}
	store.sessions = append(store.sessions, other)

	userID := uuid.New()
	session, err := svc.ResolveActive(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEqual(t, other.ID, session.ID)
	assert.Equal(t, userID, session.UserID)
}

// Two first turns racing on session creation may each create a session;
// both proceed with their own and neither fails. The duplicate is
// tolerated, not merged.
func TestResolveActiveConcurrentFirstTurns(t *testing.T) {
	store := newMemSessionStore()
	userID := uuid.New()

	// A store whose lookup always misses forces both callers down the
	// create path, modeling the race window.
	svc := NewSessionService(&alwaysMissStore{inner: store})

	var wg sync.WaitGroup
	results := make([]*domain.ChatSession, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := svc.ResolveActive(context.Background(), userID)
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.NotEqual(t, results[0].ID, results[1].ID)
	assert.Len(t, store.sessions, 2)
}

type alwaysMissStore struct {
	inner *memSessionStore
}

func (a *alwaysMissStore) Create(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	return a.inner.Create(ctx, userID)
}

func (a *alwaysMissStore) Latest(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	return nil, domain.ErrSessionNotFound
}

func (a *alwaysMissStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	return a.inner.ListByUser(ctx, userID)
}

func (a *alwaysMissStore) DeleteOwned(ctx context.Context, sessionID, userID uuid.UUID) error {
	return a.inner.DeleteOwned(ctx, sessionID, userID)
}

func (a *alwaysMissStore) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	return a.inner.ListMessages(ctx, sessionID)
}

func TestHistoryGroupsMessagesBySession(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store)
	userID := uuid.New()

	s1 := domain.ChatSession{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().Add(-time.Hour)}
	s2 := domain.ChatSession{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	store.sessions = append(store.sessions, s1, s2)
	store.messages[s1.ID] = []domain.ChatMessage{
		{SessionID: s1.ID, Role: domain.RoleUser, Content: "q"},
		{SessionID: s1.ID, Role: domain.RoleAssistant, Content: "a"},
	}

	history, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	for _, sh := range history {
		for _, m := range sh.Messages {
			assert.Equal(t, sh.Session.ID, m.SessionID, "no message crosses sessions")
		}
	}
}

func TestDeleteUnknownSession(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDeleteForeignSessionLooksMissing(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store)

	owner := uuid.New()
	session, err := store.Create(context.Background(), owner)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Len(t, store.sessions, 1)
}
