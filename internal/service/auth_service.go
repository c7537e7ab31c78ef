package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auth-portal/internal/credentials"
	"auth-portal/internal/token"
)

var (
	// ErrMissingCredentials indicates an empty username or password field.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoToken indicates a verify call without a token.
	ErrNoToken = errors.New("no token provided")
	// ErrInvalidToken indicates a token that failed signature or structure checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// AuthService describes the login and session verification operations.
// Every operation is a single synchronous check; there are no retries.
type AuthService interface {
	Login(ctx context.Context, username, password string) (signed string, user string, err error)
	VerifySession(ctx context.Context, tokenString string) (*token.Claims, error)
}

type authService struct {
	store *credentials.Store
	codec *token.Codec
}

func NewAuthService(store *credentials.Store, codec *token.Codec) AuthService {
	return &authService{
		store: store,
		codec: codec,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, string, error) {
	// Only truly empty fields are a validation failure; a whitespace-only
	// username counts as present and fails credential verification instead,
	// indistinguishable from any other wrong username.
	if username == "" || password == "" {
		return "", "", ErrMissingCredentials
	}

	if !s.store.Verify(username, password) {
		return "", "", ErrInvalidCredentials
	}

	signed, err := s.codec.Issue(username, time.Now().UTC())
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}

	return signed, username, nil
}

func (s *authService) VerifySession(ctx context.Context, tokenString string) (*token.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims, err := s.codec.Validate(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	return claims, nil
}
