package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/identity-api/internal/domain"
)

// UsedResetTokenStore tracks consumed reset-token ids until their natural expiry.
type UsedResetTokenStore struct {
	mu   sync.Mutex
	used map[string]time.Time // jti -> expiresAt
	now  func() time.Time
}

func NewUsedResetTokenStore() *UsedResetTokenStore {
	return &UsedResetTokenStore{
		used: make(map[string]time.Time),
		now:  time.Now,
	}
}

// MarkUsed claims the jti; a second claim fails with domain.ErrConflict.
// Expired entries are purged on the way through.
func (s *UsedResetTokenStore) MarkUsed(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.used {
		if exp.Before(now) {
			delete(s.used, id)
		}
	}
	if _, ok := s.used[jti]; ok {
		return fmt.Errorf("reset token already used: %w", domain.ErrConflict)
	}
	s.used[jti] = expiresAt
	return nil
}
