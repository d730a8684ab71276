package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/identity-api/internal/config"
	"github.com/identity-api/internal/pkg/id"
)

// token_use values embedded in every signed payload. Verifiers check this
// discriminant before trusting any other claim, so a reset token can never
// pass as a session credential or vice versa.
const (
	useSession = "session"
	useReset   = "password_reset"
)

var errWrongClass = errors.New("wrong token class")

// SessionClaims is the payload of a long-lived session token.
// Subject is the user id.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// ResetClaims is the payload of a short-lived password-reset token.
// Subject is the email, never a user id. ID (jti) is a ULID used for
// single-use tracking at finalization.
type ResetClaims struct {
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs. Both token classes share the key
// pair; class separation lives in the token_use claim.
type Provider struct {
	privateKey    *rsa.PrivateKey
	publicKey     *rsa.PublicKey
	sessionExpiry time.Duration
	resetExpiry   time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey:    privKey,
		publicKey:     pubKey,
		sessionExpiry: cfg.SessionTokenExpiry,
		resetExpiry:   cfg.ResetTokenExpiry,
	}, nil
}

func (p *Provider) SignSession(userID, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   userID,
		Role:     role,
		TokenUse: useSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) VerifySession(tokenStr string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := p.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.TokenUse != useSession {
		return nil, errWrongClass
	}
	return &claims, nil
}

func (p *Provider) SignReset(email string) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		Email:    email,
		TokenUse: useReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.resetExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) VerifyReset(tokenStr string) (*ResetClaims, error) {
	var claims ResetClaims
	if err := p.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.TokenUse != useReset {
		return nil, errWrongClass
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, errors.New("incomplete reset claims")
	}
	return &claims, nil
}

// parse verifies signature and expiry; the caller checks the class discriminant.
func (p *Provider) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token claims")
	}
	return nil
}
