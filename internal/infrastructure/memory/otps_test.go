package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOtpStore_IssueConsume_HappyPath(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)
	require.Len(t, code, 6)

	found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOtpStore_Consume_SingleUse(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)

	found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
	require.NoError(t, err)
	require.True(t, found)

	found, err = s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
	require.NoError(t, err)
	assert.False(t, found, "second consume of the same code must fail")
}

func TestOtpStore_Issue_SupersedesPriorCode(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	first, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)
	second, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)

	if first != second {
		found, err := s.Consume(ctx, "a@x.com", first, domain.PurposeVerification)
		require.NoError(t, err)
		assert.False(t, found, "superseded code must not be consumable")
	}

	found, err := s.Consume(ctx, "a@x.com", second, domain.PurposeVerification)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOtpStore_Consume_WrongCode(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	found, err := s.Consume(ctx, "a@x.com", wrong, domain.PurposeVerification)
	require.NoError(t, err)
	assert.False(t, found)

	// The live code is untouched by a failed attempt.
	found, err = s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOtpStore_Consume_PurposeScoped(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)

	found, err := s.Consume(ctx, "a@x.com", code, domain.PurposePasswordReset)
	require.NoError(t, err)
	assert.False(t, found, "code must not verify under a different purpose")
}

func TestOtpStore_Consume_NormalizesEmail(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "  A@X.com ", domain.PurposeVerification)
	require.NoError(t, err)

	found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOtpStore_TTLBoundary(t *testing.T) {
	const ttl = 10 * time.Minute
	ctx := context.Background()

	base := time.Now()

	t.Run("just inside TTL succeeds", func(t *testing.T) {
		s := NewOtpStore(ttl)
		s.now = func() time.Time { return base }
		code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
		require.NoError(t, err)

		s.now = func() time.Time { return base.Add(ttl - time.Second) }
		found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("at TTL fails", func(t *testing.T) {
		s := NewOtpStore(ttl)
		s.now = func() time.Time { return base }
		code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
		require.NoError(t, err)

		s.now = func() time.Time { return base.Add(ttl) }
		found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("past TTL fails even though record is still present", func(t *testing.T) {
		s := NewOtpStore(ttl)
		s.now = func() time.Time { return base }
		code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
		require.NoError(t, err)

		s.now = func() time.Time { return base.Add(ttl + time.Second) }
		found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestOtpStore_ConcurrentIssue_OneLiveRecord(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	const n = 32
	codes := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
			require.NoError(t, err)
			codes[i] = code
		}(i)
	}
	wg.Wait()

	// Exactly one of the issued codes is live afterward.
	live := 0
	for _, code := range codes {
		found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
		require.NoError(t, err)
		if found {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestOtpStore_ConcurrentConsume_OneSuccess(t *testing.T) {
	s := NewOtpStore(10 * time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@x.com", domain.PurposeVerification)
	require.NoError(t, err)

	const n = 32
	var successes atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			found, err := s.Consume(ctx, "a@x.com", code, domain.PurposeVerification)
			require.NoError(t, err)
			if found {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one concurrent consume may win")
}
