// Package memory provides mutex-guarded in-memory stores for local
// development (STORE_BACKEND=memory) and tests. Semantics mirror the
// DynamoDB repos: issue is an atomic replace, consume is an atomic
// find-and-delete with read-time TTL enforcement.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/identity-api/internal/domain"
	"github.com/identity-api/internal/pkg/otpcode"
)

type otpKey struct {
	email   string
	purpose domain.Purpose
}

type otpRecord struct {
	code     string
	issuedAt time.Time
}

// OtpStore holds OTP records keyed by (email, purpose).
type OtpStore struct {
	mu   sync.Mutex
	recs map[otpKey]otpRecord
	ttl  time.Duration
	now  func() time.Time
}

func NewOtpStore(ttl time.Duration) *OtpStore {
	return &OtpStore{
		recs: make(map[otpKey]otpRecord),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Issue generates a fresh code for (email, purpose), replacing any prior one
// under a single lock acquisition.
func (s *OtpStore) Issue(_ context.Context, email string, purpose domain.Purpose) (string, error) {
	code, err := otpcode.Generate()
	if err != nil {
		return "", err
	}
	k := otpKey{email: domain.NormalizeEmail(email), purpose: purpose}
	s.mu.Lock()
	s.recs[k] = otpRecord{code: code, issuedAt: s.now()}
	s.mu.Unlock()
	return code, nil
}

// Consume matches and deletes the record for (email, purpose) in one critical
// section. Missing, mismatched and expired records all report found=false.
// Expired records are dropped on touch; validity never depends on that.
func (s *OtpStore) Consume(_ context.Context, email, code string, purpose domain.Purpose) (bool, error) {
	k := otpKey{email: domain.NormalizeEmail(email), purpose: purpose}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[k]
	if !ok {
		return false, nil
	}
	if s.now().Sub(rec.issuedAt) >= s.ttl {
		delete(s.recs, k)
		return false, nil
	}
	if rec.code != code {
		return false, nil
	}
	delete(s.recs, k)
	return true, nil
}
