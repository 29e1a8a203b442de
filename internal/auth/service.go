package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/smsender/smsender/internal/config"
	"github.com/smsender/smsender/internal/directory"
)

// ErrInvalidToken indicates a missing, malformed, tampered or expired token.
var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies bearer tokens carrying an email claim.
type Service struct {
	secret []byte
	ttl    time.Duration
	ids    *directory.Service
}

// NewService builds a token service signing with the configured secret.
func NewService(cfg config.Config, ids *directory.Service) *Service {
	return &Service{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, ids: ids}
}

// Issue authenticates the email/password pair against the directory and signs
// a token for it. Tokens are only ever minted for registered identities.
func (s *Service) Issue(ctx context.Context, email, password string) (string, time.Time, error) {
	identity, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   identity.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the email the token was
// issued for.
func (s *Service) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
