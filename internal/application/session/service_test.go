package session

import (
	"context"
	"errors"
	"testing"

	"github.com/identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct{ mock.Mock }

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) SignSession(userID, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func TestLogin_HappyPath(t *testing.T) {
	auth := &mockAuthenticator{}
	signer := &mockSigner{}
	auth.On("Authenticate", mock.Anything, "a@x.com", "secret123").Return(&domain.User{UserID: "u1", Role: domain.RoleUser}, nil)
	signer.On("SignSession", "u1", domain.RoleUser).Return("bearer-token", nil)

	svc := NewService(auth, signer)
	bearer, u, err := svc.Login(context.Background(), "a@x.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", bearer)
	assert.Equal(t, "u1", u.UserID)
}

func TestLogin_BadCredentials(t *testing.T) {
	auth := &mockAuthenticator{}
	auth.On("Authenticate", mock.Anything, "a@x.com", "wrong").Return(nil, domain.ErrUnauthorized)

	svc := NewService(auth, &mockSigner{})
	_, _, err := svc.Login(context.Background(), "a@x.com", "wrong")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
