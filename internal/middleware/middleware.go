// Package middleware provides the HTTP middleware shared by the services:
// request logging and optional stream authentication.
package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/auth"
)

// AuthMiddleware validates stream access tokens. With a nil service every
// request passes, which is the default open configuration.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates the middleware; authService may be nil to
// disable authentication.
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate checks the Authorization header against the token service.
// A token scoped to a scenario id only grants that scenario's stream.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authService == nil {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		subject, err := m.authService.ValidateToken(header)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if subject != "" {
			if scenarioID := r.URL.Query().Get("scenarioID"); scenarioID != "" && scenarioID != subject {
				http.Error(w, "Token not valid for this scenario", http.StatusForbidden)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// Logging logs one line per request with method, path, and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
