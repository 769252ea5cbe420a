package service

import (
	"context"
	"errors"

	"roomchat/internal/domain"
)

// AuthService resolves session tokens issued by the identity service
type AuthService struct {
	sessionRepo domain.SessionRepository
}

func NewAuthService(sessionRepo domain.SessionRepository) *AuthService {
	return &AuthService{
		sessionRepo: sessionRepo,
	}
}

// ValidateSession returns the live session for token. Lookup failures other
// than an unknown or expired session are returned as is.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
		return nil, domain.ErrUnauthenticated
	case err != nil:
		return nil, err
	}
	return session, nil
}
