package middleware

import (
	"crypto/hmac"
	"log/slog"
	"net/http"

	"roomchat/internal/httpx"
	"roomchat/internal/observability"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"

	CSRFFailedMessage = "CSRF verification failed"
)

// CSRF validates a double-submitted token on state-changing requests that
// were authenticated by the session cookie. The X-CSRFToken header must
// equal the csrftoken cookie. Bearer-token requests are not checked.
// Must run after Auth.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) || !authenticatedByCookie(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			logCSRFFailure(r, "missing cookie")
			httpx.Error(w, CSRFFailedMessage, http.StatusForbidden)
			return
		}

		submitted := r.Header.Get(CSRFHeaderName)
		if submitted == "" {
			logCSRFFailure(r, "missing token")
			httpx.Error(w, CSRFFailedMessage, http.StatusForbidden)
			return
		}

		if !hmac.Equal([]byte(cookie.Value), []byte(submitted)) {
			logCSRFFailure(r, "invalid token")
			httpx.Error(w, CSRFFailedMessage, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

func logCSRFFailure(r *http.Request, reason string) {
	observability.FromContext(r.Context()).Warn("CSRF validation failed",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
}
