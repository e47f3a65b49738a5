package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateLock stores a client's snapshot of a resolved rate with its validity window.
type RateLock struct {
	RateLockID         string          `json:"rateLockID"` // Primary Key (UUID)
	ClientID           string          `json:"clientID"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	LockedRate         decimal.Decimal `json:"lockedRate"`
	ExchangeRateID     string          `json:"exchangeRateID"` // FK -> ExchangeRate.exchangeRateID
	LockedAt           time.Time       `json:"lockedAt"`
	ValidUntil         time.Time       `json:"validUntil"`
	IsUsed             bool            `json:"isUsed"`
	UsedAt             *time.Time      `json:"usedAt,omitempty"`
	IsCancelled        bool            `json:"isCancelled"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason       *string         `json:"cancelReason,omitempty"`
	LockReference      string          `json:"lockReference"`
	AuditFields
}
