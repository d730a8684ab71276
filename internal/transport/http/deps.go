package http

import (
	"github.com/identity-api/internal/application/user"
	"github.com/identity-api/internal/application/verification"
	jwtinfra "github.com/identity-api/internal/infrastructure/jwt"
	"github.com/identity-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router. Stores are
// interfaces so the DynamoDB and in-memory backends are interchangeable.
type Deps struct {
	OtpStore        verification.OtpStore
	UserRepo        user.Repository
	UsedResetTokens verification.ResetTokenUsageStore
	Mailer          smtp.Mailer
	JWTProvider     *jwtinfra.Provider
}
