package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"roomchat/internal/domain"
	"roomchat/internal/service"
	"roomchat/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		assert.True(t, ok)
		w.Write([]byte(userID))
	})
}

func TestAuth(t *testing.T) {
	live := testutil.NewTestSession()
	expired := testutil.NewTestSession(testutil.WithExpired())
	auth := Auth(service.NewAuthService(testutil.NewMockSessionRepository(live, expired)))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer_token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+live.Token) },
			wantStatus: http.StatusOK,
			wantBody:   live.UserID,
		},
		{
			name:       "session_cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: live.Token}) },
			wantStatus: http.StatusOK,
			wantBody:   live.UserID,
		},
		{
			name:       "no_credentials",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unsupported_scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired_session",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired.Token) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown_token",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "nope"}) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			auth(echoUser(t)).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestAuth_StoreFailureIs500(t *testing.T) {
	repo := testutil.NewMockSessionRepository()
	repo.GetByTokenFunc = func(context.Context, string) (*domain.Session, error) {
		return nil, testutil.ErrMockDatabase
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()

	Auth(service.NewAuthService(repo))(echoUser(t)).ServeHTTP(w, req)

	testutil.AssertErrorEnvelope(t, w, http.StatusInternalServerError, "Internal server error")
}
