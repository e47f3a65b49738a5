package domain

import (
	"fmt"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
)

// LockAvailabilityPolicy enforces the per-client admission rules for new
// rate locks: a cap on concurrently active locks and uniqueness per currency
// pair. It is a pure check over the client's existing locks; the caller is
// responsible for running it under a serialization boundary scoped to the
// client so the check-then-insert sequence cannot race with itself.
type LockAvailabilityPolicy struct {
	MaxActiveLocksPerClient int
}

// CheckAdmission validates a prospective lock for the given pair against the
// client's existing locks.
func (p LockAvailabilityPolicy) CheckAdmission(existing []RateLock, baseCurrencyCode, targetCurrencyCode string, now time.Time) error {
	active := 0
	for _, lock := range existing {
		if !lock.IsActiveAt(now) {
			continue
		}
		active++
		if lock.BaseCurrencyCode == baseCurrencyCode && lock.TargetCurrencyCode == targetCurrencyCode {
			return fmt.Errorf("%w: %s/%s locked until %s",
				apperrors.ErrDuplicateLockForPair, baseCurrencyCode, targetCurrencyCode, lock.ValidUntil.Format(time.RFC3339))
		}
	}
	if active >= p.MaxActiveLocksPerClient {
		return fmt.Errorf("%w: %d active locks, limit %d",
			apperrors.ErrLockLimitExceeded, active, p.MaxActiveLocksPerClient)
	}
	return nil
}
