package domain

import (
	"fmt"
	"strings"
)

// Purpose discriminates what an OTP was issued for. Codes are scoped per
// purpose and are never cross-usable.
type Purpose string

const (
	PurposeVerification  Purpose = "verification"
	PurposePasswordReset Purpose = "password-reset"
)

// ParsePurpose maps a request-supplied purpose string to a Purpose.
// An empty string defaults to PurposeVerification.
func ParsePurpose(s string) (Purpose, error) {
	switch s {
	case "", string(PurposeVerification):
		return PurposeVerification, nil
	case string(PurposePasswordReset):
		return PurposePasswordReset, nil
	default:
		return "", fmt.Errorf("unknown purpose %q: %w", s, ErrBadRequest)
	}
}

// OtpRecord stores a one-time passcode bound to an email and a purpose.
// PK: email, SK: purpose — at most one live record per (email, purpose).
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; it is a hygiene
// measure only, validity is always re-checked against IssuedAt at consume.
type OtpRecord struct {
	Email     string  `json:"email" dynamodbav:"email"`
	Purpose   Purpose `json:"purpose" dynamodbav:"purpose"`
	Code      string  `json:"-" dynamodbav:"code"`
	IssuedAt  int64   `json:"issued_at" dynamodbav:"issued_at"`   // Unix seconds
	ExpiresAt int64   `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// NormalizeEmail lowercases and trims an email so every store keyed by it
// sees one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
