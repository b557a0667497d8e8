package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altrove/habitlens/internal/core/domain"
)

var ErrTokenInvalid = errors.New("token service: invalid or expired token")

// TokenService issues and verifies the HS256 bearer tokens used by the
// API. Validation also checks that the subject still exists, so deleting
// a user revokes every token they hold.
type TokenService struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	userRepo domain.UserRepository
}

func NewTokenService(secret string, issuer string, ttl time.Duration, userRepo domain.UserRepository) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		ttl:      ttl,
		userRepo: userRepo,
	}
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token service: signing failed: %w", err)
	}
	return signed, nil
}

// ValidateToken returns the user id carried by a well-formed token.
// Any parse, signature, issuer or expiry problem collapses into
// ErrTokenInvalid so callers leak nothing to the client.
func (s *TokenService) ValidateToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, claims.Subject); err != nil {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
