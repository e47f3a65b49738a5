package domain_test

import (
	"testing"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeLock(t *testing.T, base, target string, now time.Time) domain.RateLock {
	t.Helper()
	resolution := domain.RateResolution{
		Rate: domain.ExchangeRate{
			ExchangeRateID:     "rate-1",
			BaseCurrencyCode:   base,
			TargetCurrencyCode: target,
		},
		EffectiveRate: decimal.NewFromInt(1),
	}
	lock, err := domain.NewRateLock("client-1", resolution, 15*time.Minute, "ref", "client-1", now)
	require.NoError(t, err)
	return *lock
}

func TestLockAvailabilityPolicy_CheckAdmission(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	policy := domain.LockAvailabilityPolicy{MaxActiveLocksPerClient: 2}

	t.Run("admits when under the cap with no pair clash", func(t *testing.T) {
		existing := []domain.RateLock{activeLock(t, "USD", "NGN", now)}
		assert.NoError(t, policy.CheckAdmission(existing, "USD", "EUR", now))
	})

	t.Run("rejects a duplicate pair", func(t *testing.T) {
		existing := []domain.RateLock{activeLock(t, "USD", "NGN", now)}
		err := policy.CheckAdmission(existing, "USD", "NGN", now)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateLockForPair)
	})

	t.Run("rejects at the cap", func(t *testing.T) {
		existing := []domain.RateLock{
			activeLock(t, "USD", "NGN", now),
			activeLock(t, "USD", "EUR", now),
		}
		err := policy.CheckAdmission(existing, "USD", "GBP", now)
		assert.ErrorIs(t, err, apperrors.ErrLockLimitExceeded)
	})

	t.Run("pair uniqueness is reported before the cap", func(t *testing.T) {
		existing := []domain.RateLock{
			activeLock(t, "USD", "NGN", now),
			activeLock(t, "USD", "EUR", now),
		}
		err := policy.CheckAdmission(existing, "USD", "NGN", now)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateLockForPair)
	})

	t.Run("inactive locks do not count", func(t *testing.T) {
		used := activeLock(t, "USD", "NGN", now)
		require.NoError(t, used.MarkUsed(now))

		cancelled := activeLock(t, "USD", "EUR", now)
		require.NoError(t, cancelled.Cancel("superseded", now))

		expired := activeLock(t, "USD", "GBP", now.Add(-time.Hour))

		existing := []domain.RateLock{used, cancelled, expired}
		assert.NoError(t, policy.CheckAdmission(existing, "USD", "NGN", now))
	})

	t.Run("empty history admits", func(t *testing.T) {
		assert.NoError(t, policy.CheckAdmission(nil, "USD", "NGN", now))
	})
}
