package session

import (
	"context"

	"github.com/identity-api/internal/domain"
)

// Authenticator checks a password against the credential store.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// TokenSigner issues the long-lived session-token class.
type TokenSigner interface {
	SignSession(userID, role string) (string, error)
}

// Service turns a successful credential check into a bearer session token.
// Sessions are self-contained JWTs; there is no server-side session record.
type Service interface {
	Login(ctx context.Context, email, password string) (bearer string, u *domain.User, err error)
}

type service struct {
	auth   Authenticator
	signer TokenSigner
}

func NewService(auth Authenticator, signer TokenSigner) Service {
	return &service{auth: auth, signer: signer}
}

func (s *service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	bearer, err := s.signer.SignSession(u.UserID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return bearer, u, nil
}
