package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalid covers every rejection other than expiry: bad signature,
	// malformed structure, unexpected signing algorithm.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired indicates a well-signed token past its expiry. The split
	// exists for server-side logging; clients must see both identically.
	ErrExpired = errors.New("token expired")
)

// Claims is the payload signed into a session token. Validity is determined
// purely by signature and the embedded expiry; there is no server-side state.
type Claims struct {
	jwt.RegisteredClaims
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}

// Codec signs and validates session tokens with an HMAC-SHA256 secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given username. The embedded expiry is issuedAt
// plus the codec TTL.
func (c *Codec) Issue(username string, issuedAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
		Authenticated: true,
		Username:      username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the decoded claims.
// Details of why parsing failed are never surfaced to avoid oracle leakage.
func (c *Codec) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
