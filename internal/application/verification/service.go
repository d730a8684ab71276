package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/identity-api/internal/domain"
	jwtinfra "github.com/identity-api/internal/infrastructure/jwt"
	"github.com/identity-api/internal/infrastructure/smtp"
)

// OtpStore issues and consumes one-time passcodes. Both operations must be
// atomic per (email, purpose): Issue is a single conditional upsert, Consume
// a single find-and-delete.
type OtpStore interface {
	Issue(ctx context.Context, email string, purpose domain.Purpose) (string, error)
	Consume(ctx context.Context, email, code string, purpose domain.Purpose) (bool, error)
}

// CredentialStore is the slice of the user service this orchestrator needs.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ReplacePassword(ctx context.Context, userID, newPassword string) error
}

// ResetTokenIssuer signs and verifies the short-lived reset-token class.
type ResetTokenIssuer interface {
	SignReset(email string) (string, error)
	VerifyReset(token string) (*jwtinfra.ResetClaims, error)
}

// ResetTokenUsageStore makes reset tokens single-use: MarkUsed fails with
// domain.ErrConflict on the second claim of the same jti.
type ResetTokenUsageStore interface {
	MarkUsed(ctx context.Context, jti string, expiresAt time.Time) error
}

// Service is the request-level verification protocol: issue a code, consume
// it exactly once, and for password resets bridge to a password change via a
// reset token. Stateless between calls — the OTP store and the token itself
// carry all progress.
type Service interface {
	SendVerificationCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string, purpose domain.Purpose) (resetToken string, err error)
	RequestPasswordReset(ctx context.Context, email string) error
	FinalizePasswordReset(ctx context.Context, email, resetToken, newPassword string) error
}

// ServiceDeps bundles the collaborators for NewService.
type ServiceDeps struct {
	OtpStore    OtpStore
	Credentials CredentialStore
	Tokens      ResetTokenIssuer
	UsedTokens  ResetTokenUsageStore
	Mailer      smtp.Mailer
	MailTimeout time.Duration
}

type service struct {
	otps        OtpStore
	creds       CredentialStore
	tokens      ResetTokenIssuer
	usedTokens  ResetTokenUsageStore
	mailer      smtp.Mailer
	mailTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otps:        deps.OtpStore,
		creds:       deps.Credentials,
		tokens:      deps.Tokens,
		usedTokens:  deps.UsedTokens,
		mailer:      deps.Mailer,
		mailTimeout: deps.MailTimeout,
	}
}

func (s *service) SendVerificationCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	code, err := s.otps.Issue(ctx, email, domain.PurposeVerification)
	if err != nil {
		return fmt.Errorf("issue verification code: %w", err)
	}
	return s.dispatch(ctx, email, code, domain.PurposeVerification)
}

func (s *service) VerifyCode(ctx context.Context, email, code string, purpose domain.Purpose) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || code == "" {
		return "", fmt.Errorf("email and code required: %w", domain.ErrBadRequest)
	}
	found, err := s.otps.Consume(ctx, email, code, purpose)
	if err != nil {
		return "", fmt.Errorf("consume code: %w", err)
	}
	if !found {
		return "", domain.ErrCodeInvalid
	}
	if purpose != domain.PurposePasswordReset {
		return "", nil
	}
	token, err := s.tokens.SignReset(email)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	return token, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	// Unlike plain verification, a reset request is only honored for an
	// existing account; delivery to a real inbox reveals existence anyway.
	u, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no such account: %w", domain.ErrNotFound)
	}
	code, err := s.otps.Issue(ctx, u.Email, domain.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}
	return s.dispatch(ctx, u.Email, code, domain.PurposePasswordReset)
}

func (s *service) FinalizePasswordReset(ctx context.Context, email, resetToken, newPassword string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || resetToken == "" || newPassword == "" {
		return fmt.Errorf("email, reset token and new password required: %w", domain.ErrBadRequest)
	}
	claims, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return fmt.Errorf("verify reset token: %w", domain.ErrTokenInvalid)
	}
	// The token authorizes a reset for its own subject only.
	if domain.NormalizeEmail(claims.Email) != email {
		return fmt.Errorf("token does not match email: %w", domain.ErrTokenInvalid)
	}
	if err := s.usedTokens.MarkUsed(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("reset token replayed: %w", domain.ErrTokenInvalid)
		}
		return fmt.Errorf("mark reset token used: %w", err)
	}
	u, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if err := s.creds.ReplacePassword(ctx, u.UserID, newPassword); err != nil {
		return fmt.Errorf("replace password: %w", err)
	}
	return nil
}

// dispatch sends the code with a bounded deadline. A delivery failure is
// reported as ErrDispatch while the issued code stays live, so recovery is a
// delivery retry rather than re-issuance.
func (s *service) dispatch(ctx context.Context, email, code string, purpose domain.Purpose) error {
	subject := "Your verification code"
	if purpose == domain.PurposePasswordReset {
		subject = "Your password reset code"
	}
	body := "Your code: " + code + "\n\nIt expires in 10 minutes."

	ctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		slog.Warn("failed to deliver otp", "email", email, "purpose", purpose, "err", err)
		return fmt.Errorf("send code: %w", domain.ErrDispatch)
	}
	return nil
}
