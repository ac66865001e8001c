// Package auth issues and validates the bearer tokens that optionally gate
// the snapshot stream.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service signs and validates stream access tokens.
type Service struct {
	secret   []byte
	tokenExp time.Duration
}

// NewService creates a token service around a shared secret.
func NewService(secret string) *Service {
	return &Service{
		secret:   []byte(secret),
		tokenExp: 24 * time.Hour,
	}
}

// GenerateToken issues a token whose subject is the scenario id it grants
// access to. An empty subject grants access to every scenario.
func (s *Service) GenerateToken(scenarioID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   scenarioID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExp)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks a bearer token (with or without the "Bearer " prefix)
// and returns its subject.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
