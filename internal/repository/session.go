package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mindan-edu/mathtutor/internal/domain"
)

type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	session := &domain.ChatSession{
		ID:     uuid.New(),
		UserID: userID,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_sessions (id, user_id)
		 VALUES ($1, $2)
		 RETURNING created_at`,
		session.ID, userID,
	).Scan(&session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// Latest returns the most recently created session owned by userID.
func (r *SessionRepo) Latest(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	session := &domain.ChatSession{UserID: userID}

	err := r.db.QueryRow(ctx,
		`SELECT id, created_at
		 FROM chat_sessions WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT 1`,
		userID,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("latest session: %w", err)
	}

	return session, nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, created_at
		 FROM chat_sessions WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		s := domain.ChatSession{UserID: userID}
		if err := rows.Scan(&s.ID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

// DeleteOwned removes a session and, via cascade, all of its messages.
// Only the owner may delete; a foreign session looks like a missing one.
func (r *SessionRepo) DeleteOwned(ctx context.Context, sessionID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// RecentMessages returns up to limit messages for a session, newest first.
func (r *SessionRepo) RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, seq, role, content, created_at
		 FROM chat_messages WHERE session_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, sessionID)
}

// ListMessages returns the full message log for a session, oldest first.
func (r *SessionRepo) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, seq, role, content, created_at
		 FROM chat_messages WHERE session_id = $1
		 ORDER BY created_at, seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, sessionID)
}

// AppendTurn durably records one full exchange: the user message and the
// assistant reply land in a single transaction, so a failure between the
// two inserts can never leave a dangling half-turn.
func (r *SessionRepo) AppendTurn(ctx context.Context, sessionID uuid.UUID, userContent, assistantContent string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin turn: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize appends per session: without the lock two concurrent
	// turns read the same MAX(seq) and the loser trips the
	// (session_id, seq) uniqueness constraint. Released on commit.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		sessionID,
	); err != nil {
		return fmt.Errorf("lock session: %w", err)
	}

	for _, m := range []struct {
		role    string
		content string
	}{
		{domain.RoleUser, userContent},
		{domain.RoleAssistant, assistantContent},
	} {
		_, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (id, session_id, seq, role, content)
			 VALUES ($1, $2, COALESCE((SELECT MAX(seq) FROM chat_messages WHERE session_id = $2), 0) + 1, $3, $4)`,
			uuid.New(), sessionID, m.role, m.content,
		)
		if err != nil {
			return fmt.Errorf("append %s message: %w", m.role, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit turn: %w", err)
	}
	return nil
}

func scanMessages(rows pgx.Rows, sessionID uuid.UUID) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	for rows.Next() {
		m := domain.ChatMessage{SessionID: sessionID}
		if err := rows.Scan(&m.ID, &m.Seq, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return messages, nil
}
