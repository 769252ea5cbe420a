package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"roomchat/internal/domain"
	"roomchat/internal/httpx"
	"roomchat/internal/observability"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
	viaCookie  contextKey = "via_cookie"

	SessionCookieName = "session_id"

	NotAuthenticatedMessage = "Authentication credentials were not provided"
)

// SessionValidator resolves a session token to a live session
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*domain.Session, error)
}

// Auth authenticates the request with a bearer token or the session cookie
// and stores the session in the request context
func Auth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := extractToken(r)
			if token == "" {
				httpx.Error(w, NotAuthenticatedMessage, http.StatusUnauthorized)
				return
			}

			session, err := sessions.ValidateSession(r.Context(), token)
			if err != nil {
				status, msg := http.StatusUnauthorized, "Invalid or expired session"
				if !isAuthFailure(err) {
					observability.FromContext(r.Context()).Error("session lookup failed",
						slog.String("error", err.Error()))
					status = http.StatusInternalServerError
					msg = "Internal server error"
				}
				httpx.Error(w, msg, status)
				return
			}

			ctx := WithSession(r.Context(), session)
			ctx = context.WithValue(ctx, viaCookie, fromCookie)
			ctx = observability.WithUserID(ctx, session.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrSessionExpired)
}

// extractToken prefers the Authorization header over the session cookie
func extractToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token), false
		}
		return "", false
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value, true
	}
	return "", false
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetSession(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithSession stores the session and its user id
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	ctx = context.WithValue(ctx, SessionKey, session)
	return WithUserID(ctx, session.UserID)
}

func authenticatedByCookie(ctx context.Context) bool {
	v, _ := ctx.Value(viaCookie).(bool)
	return v
}
