package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the pricing configuration for a directional currency pair.
// Note: monetary values use github.com/shopspring/decimal for precision.
type ExchangeRate struct {
	ExchangeRateID      string          `json:"exchangeRateID"`     // Primary Key (UUID)
	BaseCurrencyCode    string          `json:"baseCurrencyCode"`   // ISO 4217 code
	TargetCurrencyCode  string          `json:"targetCurrencyCode"` // ISO 4217 code
	BaseCurrencyValue   decimal.Decimal `json:"baseCurrencyValue"`
	TargetCurrencyValue decimal.Decimal `json:"targetCurrencyValue"`
	Margin              decimal.Decimal `json:"margin"`
	RateType            string          `json:"rateType"`                // GENERAL | GROUP | INDIVIDUAL
	ClientID            *string         `json:"clientID,omitempty"`      // set iff RateType == INDIVIDUAL
	ClientGroupID       *string         `json:"clientGroupID,omitempty"` // set iff RateType == GROUP
	EffectiveFrom       time.Time       `json:"effectiveFrom"`
	EffectiveTo         *time.Time      `json:"effectiveTo,omitempty"`
	IsActive            bool            `json:"isActive"`
	Source              string          `json:"source"`
	AuditFields
}

// RateTier stores one amount bracket of a tiered General rate.
type RateTier struct {
	RateTierID     string          `json:"rateTierID"`     // Primary Key (UUID)
	ExchangeRateID string          `json:"exchangeRateID"` // FK -> ExchangeRate.exchangeRateID
	MinAmount      decimal.Decimal `json:"minAmount"`
	MaxAmount      decimal.Decimal `json:"maxAmount"`
	Rate           decimal.Decimal `json:"rate"`
	Margin         decimal.Decimal `json:"margin"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}
