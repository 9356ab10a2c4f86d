// Package token issues and validates the signed session tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobboard/internal/clock"
)

var (
	ErrMalformed    = errors.New("token malformed")
	ErrBadSignature = errors.New("token signature invalid")
	ErrExpired      = errors.New("token expired")
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 30 * 24 * time.Hour

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Service signs tokens with an HMAC secret. It is safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewService(secret string, ttl time.Duration, clk clock.Clock) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Service{secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

// Issue returns a token binding userID that expires ttl from now.
func (s *Service) Issue(userID string) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the bound user id.
func (s *Service) Validate(raw string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", ErrBadSignature
	default:
		return "", ErrMalformed
	}

	if claims.UserID == "" {
		return "", ErrMalformed
	}
	return claims.UserID, nil
}
