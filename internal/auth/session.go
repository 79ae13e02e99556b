// Package auth implements the admin gate: a single bcrypt-checked password
// and a redis-backed session marking the caller as privileged.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ccube-expense/ccube-expense/internal/shared"
)

const sessionPrefix = "ccube_session:"

// SessionManager stores admin sessions in redis keyed by an opaque cookie.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{client: client, cookieName: cookieName, ttl: ttl, secure: secure}
}

// Create stores a session for the identity and sets the cookie.
func (m *SessionManager) Create(ctx context.Context, w http.ResponseWriter, id shared.Identity) error {
	if m == nil || m.client == nil {
		return errors.New("auth: session manager not initialised")
	}
	sid := uuid.NewString()
	payload, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("auth: marshal session: %w", err)
	}
	if err := m.client.Set(ctx, sessionPrefix+sid, payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("auth: store session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load resolves the request cookie to an identity. A missing or expired
// session yields the anonymous identity, never an error.
func (m *SessionManager) Load(ctx context.Context, r *http.Request) shared.Identity {
	if m == nil || m.client == nil {
		return shared.Identity{}
	}
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return shared.Identity{}
	}
	payload, err := m.client.Get(ctx, sessionPrefix+cookie.Value).Bytes()
	if err != nil {
		return shared.Identity{}
	}
	var id shared.Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return shared.Identity{}
	}
	return id
}

// Destroy removes the session and clears the cookie.
func (m *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if m == nil || m.client == nil {
		return
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		_ = m.client.Del(ctx, sessionPrefix+cookie.Value).Err()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware attaches the caller identity to the request context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.ContextWithIdentity(r.Context(), m.Load(r.Context(), r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose identity is not privileged.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.IdentityFromContext(r.Context()).Admin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
