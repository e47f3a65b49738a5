package dto

import (
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRateLockRequest asks for a time-boxed snapshot of the effective rate
// for a pair. Duration is expressed in seconds. ClientID is populated by the
// handler from the authenticated token, never from the request body.
type CreateRateLockRequest struct {
	ClientID            string `json:"-"`
	ClientGroupID       string `json:"clientGroupID,omitempty"`
	BaseCurrencyCode    string `json:"baseCurrencyCode" binding:"required,len=3,uppercase"`
	TargetCurrencyCode  string `json:"targetCurrencyCode" binding:"required,len=3,uppercase"`
	LockDurationSeconds int64  `json:"lockDurationSeconds" binding:"required,gt=0"`
	LockReference       string `json:"lockReference" binding:"required"`
}

// ExtendRateLockRequest pushes a lock's validity window forward.
type ExtendRateLockRequest struct {
	AdditionalSeconds int64 `json:"additionalSeconds" binding:"required,gt=0"`
}

// CancelRateLockRequest terminates a lock before use.
type CancelRateLockRequest struct {
	Reason string `json:"reason"`
}

// RateLockResponse is the API representation of a rate lock. Status and
// ExpirationWarning are computed against the server clock at render time.
type RateLockResponse struct {
	RateLockID         string                `json:"rateLockID"`
	ClientID           string                `json:"clientID"`
	BaseCurrencyCode   string                `json:"baseCurrencyCode"`
	TargetCurrencyCode string                `json:"targetCurrencyCode"`
	LockedRate         decimal.Decimal       `json:"lockedRate"`
	ExchangeRateID     string                `json:"exchangeRateID"`
	LockedAt           time.Time             `json:"lockedAt"`
	ValidUntil         time.Time             `json:"validUntil"`
	Status             domain.RateLockStatus `json:"status"`
	UsedAt             *time.Time            `json:"usedAt,omitempty"`
	CancelReason       string                `json:"cancelReason,omitempty"`
	LockReference      string                `json:"lockReference"`
	ExpirationWarning  string                `json:"expirationWarning,omitempty"`
}

// ListRateLocksResponse wraps a paginated lock listing.
type ListRateLocksResponse struct {
	Locks    []RateLockResponse `json:"locks"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ToRateLockResponse converts a domain.RateLock to its API shape.
func ToRateLockResponse(lock *domain.RateLock, now time.Time, warningThreshold time.Duration) RateLockResponse {
	return RateLockResponse{
		RateLockID:         lock.RateLockID,
		ClientID:           lock.ClientID,
		BaseCurrencyCode:   lock.BaseCurrencyCode,
		TargetCurrencyCode: lock.TargetCurrencyCode,
		LockedRate:         lock.LockedRate,
		ExchangeRateID:     lock.ExchangeRateID,
		LockedAt:           lock.LockedAt,
		ValidUntil:         lock.ValidUntil,
		Status:             lock.Status(now),
		UsedAt:             lock.UsedAt,
		CancelReason:       lock.CancelReason,
		LockReference:      lock.LockReference,
		ExpirationWarning:  lock.ExpirationWarning(now, warningThreshold),
	}
}

// ToListRateLocksResponse converts a page of locks.
func ToListRateLocksResponse(locks []domain.RateLock, total, page, pageSize int, now time.Time, warningThreshold time.Duration) ListRateLocksResponse {
	responses := make([]RateLockResponse, len(locks))
	for i := range locks {
		responses[i] = ToRateLockResponse(&locks[i], now, warningThreshold)
	}
	return ListRateLocksResponse{Locks: responses, Total: total, Page: page, PageSize: pageSize}
}
