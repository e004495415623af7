package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindan-edu/mathtutor/internal/domain"
)

type memUserStore struct {
	users map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*domain.User)}
}

func (m *memUserStore) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[username] = u
	return u, nil
}

func (m *memUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newAuthFixture() (*AuthService, *memUserStore) {
	store := newMemUserStore()
	return NewAuthService(store, "test-secret", 30*time.Minute), store
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	svc, store := newAuthFixture()

	token, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The stored hash is not the raw password.
	assert.NotEqual(t, "secret123", store.users["mina"].PasswordHash)

	user, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "mina", user.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "mina", "other@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "jun", "mina@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "mina", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "mina", "secret123")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "mina", user.Username)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	other := NewAuthService(newMemUserStore(), "different-secret", 30*time.Minute)
	token, err := other.issueToken("mina")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	store := newMemUserStore()
	svc := NewAuthService(store, "test-secret", -time.Minute)

	token, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	svc, store := newAuthFixture()

	token, err := svc.Register(context.Background(), "mina", "mina@example.com", "secret123")
	require.NoError(t, err)

	delete(store.users, "mina")

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
