package mapping

import (
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/models"
)

// ToModelRateLock converts a domain RateLock to a model RateLock
func ToModelRateLock(d domain.RateLock) models.RateLock {
	var cancelReason *string
	if d.CancelReason != "" {
		cancelReason = &d.CancelReason
	}
	return models.RateLock{
		RateLockID:         d.RateLockID,
		ClientID:           d.ClientID,
		BaseCurrencyCode:   d.BaseCurrencyCode,
		TargetCurrencyCode: d.TargetCurrencyCode,
		LockedRate:         d.LockedRate,
		ExchangeRateID:     d.ExchangeRateID,
		LockedAt:           d.LockedAt,
		ValidUntil:         d.ValidUntil,
		IsUsed:             d.IsUsed,
		UsedAt:             d.UsedAt,
		IsCancelled:        d.IsCancelled,
		CancelledAt:        d.CancelledAt,
		CancelReason:       cancelReason,
		LockReference:      d.LockReference,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRateLock converts a model RateLock to a domain RateLock
func ToDomainRateLock(m models.RateLock) domain.RateLock {
	var cancelReason string
	if m.CancelReason != nil {
		cancelReason = *m.CancelReason
	}
	return domain.RateLock{
		RateLockID:         m.RateLockID,
		ClientID:           m.ClientID,
		BaseCurrencyCode:   m.BaseCurrencyCode,
		TargetCurrencyCode: m.TargetCurrencyCode,
		LockedRate:         m.LockedRate,
		ExchangeRateID:     m.ExchangeRateID,
		LockedAt:           m.LockedAt,
		ValidUntil:         m.ValidUntil,
		IsUsed:             m.IsUsed,
		UsedAt:             m.UsedAt,
		IsCancelled:        m.IsCancelled,
		CancelledAt:        m.CancelledAt,
		CancelReason:       cancelReason,
		LockReference:      m.LockReference,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRateLockSlice converts a slice of model RateLocks to domain RateLocks
func ToDomainRateLockSlice(ms []models.RateLock) []domain.RateLock {
	ds := make([]domain.RateLock, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateLock(m)
	}
	return ds
}
