package session

import (
	"context"
	"errors"

	"auth-portal/internal/domain"
)

// ErrNotFound is returned when no live session exists for an ID. Expired
// sessions are reported the same way as missing ones.
var ErrNotFound = errors.New("session not found")

// Store defines persistence operations for server-side sessions.
type Store interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
