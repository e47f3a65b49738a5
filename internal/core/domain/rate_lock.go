package domain

import (
	"fmt"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateLockStatus is the computed state of a lock. Expired is time-derived:
// there is no explicit transition into it.
type RateLockStatus string

const (
	RateLockStatusActive    RateLockStatus = "ACTIVE"
	RateLockStatusUsed      RateLockStatus = "USED"
	RateLockStatusCancelled RateLockStatus = "CANCELLED"
	RateLockStatusExpired   RateLockStatus = "EXPIRED"
)

// RateLock snapshots a resolved effective rate for a bounded validity window
// so a multi-step purchase settles at a guaranteed price. LockedRate is a
// copy taken at creation: later changes to the source exchange rate never
// affect an existing lock. ExchangeRateID is a provenance link only.
type RateLock struct {
	RateLockID         string          `json:"rateLockID"`
	ClientID           string          `json:"clientID"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	LockedRate         decimal.Decimal `json:"lockedRate"`
	ExchangeRateID     string          `json:"exchangeRateID"`
	LockedAt           time.Time       `json:"lockedAt"`
	ValidUntil         time.Time       `json:"validUntil"`
	IsUsed             bool            `json:"isUsed"`
	UsedAt             *time.Time      `json:"usedAt,omitempty"`
	IsCancelled        bool            `json:"isCancelled"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason       string          `json:"cancelReason,omitempty"`
	LockReference      string          `json:"lockReference"`
	AuditFields
}

// NewRateLock snapshots a resolution into a lock valid for the given
// duration from now.
func NewRateLock(clientID string, resolution RateResolution, duration time.Duration, reference, createdBy string, now time.Time) (*RateLock, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: rate lock requires a client id", apperrors.ErrDomainInvariant)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: lock duration must be positive", apperrors.ErrDomainInvariant)
	}
	return &RateLock{
		ClientID:           clientID,
		BaseCurrencyCode:   resolution.Rate.BaseCurrencyCode,
		TargetCurrencyCode: resolution.Rate.TargetCurrencyCode,
		LockedRate:         resolution.EffectiveRate,
		ExchangeRateID:     resolution.Rate.ExchangeRateID,
		LockedAt:           now,
		ValidUntil:         now.Add(duration),
		LockReference:      reference,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}, nil
}

// IsExpired reports whether the validity window has passed.
func (l *RateLock) IsExpired(now time.Time) bool {
	return !l.ValidUntil.After(now)
}

// IsActiveAt reports whether the lock is unused, uncancelled and unexpired.
func (l *RateLock) IsActiveAt(now time.Time) bool {
	return !l.IsUsed && !l.IsCancelled && !l.IsExpired(now)
}

// Status computes the lock's state at the given instant.
func (l *RateLock) Status(now time.Time) RateLockStatus {
	switch {
	case l.IsUsed:
		return RateLockStatusUsed
	case l.IsCancelled:
		return RateLockStatusCancelled
	case l.IsExpired(now):
		return RateLockStatusExpired
	default:
		return RateLockStatusActive
	}
}

// Extend pushes the validity window forward. Only active locks may be
// extended; bounds on the additional duration are enforced by the caller's
// configuration.
func (l *RateLock) Extend(additional time.Duration, updatedBy string, now time.Time) error {
	if additional <= 0 {
		return fmt.Errorf("%w: extension duration must be positive", apperrors.ErrDomainInvariant)
	}
	if !l.IsActiveAt(now) {
		return fmt.Errorf("%w: lock is %s", apperrors.ErrLockNotExtendable, l.Status(now))
	}
	l.ValidUntil = l.ValidUntil.Add(additional)
	l.touch(updatedBy, now)
	return nil
}

// MarkUsed consumes the lock. A lock is one-shot: a second use fails, as
// does using an expired or cancelled lock.
func (l *RateLock) MarkUsed(at time.Time) error {
	if l.IsUsed {
		return fmt.Errorf("%w: used at %s", apperrors.ErrAlreadyUsed, l.UsedAt.Format(time.RFC3339))
	}
	if l.IsCancelled {
		return fmt.Errorf("%w: cannot use a cancelled rate lock", apperrors.ErrDomainInvariant)
	}
	if l.IsExpired(at) {
		return fmt.Errorf("%w: valid until %s", apperrors.ErrLockExpired, l.ValidUntil.Format(time.RFC3339))
	}
	used := at
	l.IsUsed = true
	l.UsedAt = &used
	l.touch(l.ClientID, at)
	return nil
}

// Cancel terminates the lock. Cancelling an already-cancelled lock is a
// no-op; a consumed lock cannot be cancelled. Expired locks may still be
// cancelled for bookkeeping.
func (l *RateLock) Cancel(reason string, now time.Time) error {
	if l.IsCancelled {
		return nil
	}
	if l.IsUsed {
		return fmt.Errorf("%w: cannot cancel a used rate lock", apperrors.ErrAlreadyUsed)
	}
	cancelled := now
	l.IsCancelled = true
	l.CancelledAt = &cancelled
	l.CancelReason = reason
	l.touch(l.ClientID, now)
	return nil
}

// IsExpiringSoon reports whether an active lock has at most threshold left.
func (l *RateLock) IsExpiringSoon(now time.Time, threshold time.Duration) bool {
	return l.IsActiveAt(now) && l.ValidUntil.Sub(now) <= threshold
}

// ExpirationWarning returns a human-readable warning when the lock is
// expiring soon or already expired, and an empty string otherwise.
func (l *RateLock) ExpirationWarning(now time.Time, threshold time.Duration) string {
	if !l.IsUsed && !l.IsCancelled && l.IsExpired(now) {
		return fmt.Sprintf("Rate lock expired at %s", l.ValidUntil.Format(time.RFC3339))
	}
	if l.IsExpiringSoon(now, threshold) {
		remaining := l.ValidUntil.Sub(now).Round(time.Second)
		return fmt.Sprintf("Rate lock expires in %s", remaining)
	}
	return ""
}

func (l *RateLock) touch(updatedBy string, now time.Time) {
	l.LastUpdatedAt = now
	l.LastUpdatedBy = updatedBy
}
