package service

import (
	"context"
	"testing"

	"roomchat/internal/domain"
	"roomchat/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_ValidateSession(t *testing.T) {
	live := testutil.NewTestSession()
	expired := testutil.NewTestSession(testutil.WithExpired())
	svc := NewAuthService(testutil.NewMockSessionRepository(live, expired))

	session, err := svc.ValidateSession(context.Background(), live.Token)
	require.NoError(t, err)
	assert.Equal(t, live.UserID, session.UserID)

	for _, token := range []string{"", "unknown", expired.Token} {
		_, err := svc.ValidateSession(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, "token %q", token)
	}
}

func TestAuthService_ValidateSession_StoreFailure(t *testing.T) {
	repo := testutil.NewMockSessionRepository()
	repo.GetByTokenFunc = func(context.Context, string) (*domain.Session, error) {
		return nil, testutil.ErrMockDatabase
	}

	_, err := NewAuthService(repo).ValidateSession(context.Background(), "token")
	assert.ErrorIs(t, err, testutil.ErrMockDatabase)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}
