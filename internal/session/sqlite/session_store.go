package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auth-portal/internal/domain"
	"auth-portal/internal/session"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	profile BLOB NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);
`

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) session.Store {
	return &SessionStore{db: db}
}

func (r *SessionStore) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (r *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, profile, created_at, expires_at)
VALUES (?, ?, ?, ?)`,
		sess.ID,
		sess.Profile,
		sess.CreatedAt,
		sess.ExpiresAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, profile, created_at, expires_at
FROM sessions
WHERE id = ?`,
		id,
	)

	sess, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now().UTC()) {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (r *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions rows affected: %w", err)
	}
	return n, nil
}

func scanSession(row interface {
	Scan(dest ...any) error
}) (*domain.Session, error) {
	var sess domain.Session
	if err := row.Scan(
		&sess.ID,
		&sess.Profile,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}
