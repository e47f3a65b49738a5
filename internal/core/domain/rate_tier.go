package domain

import (
	"fmt"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateTier is an amount-bracket pricing row owned by a General exchange rate.
// A transaction amount a belongs to the tier when MinAmount <= a <= MaxAmount.
type RateTier struct {
	RateTierID string          `json:"rateTierID"`
	MinAmount  decimal.Decimal `json:"minAmount"`
	MaxAmount  decimal.Decimal `json:"maxAmount"`
	Rate       decimal.Decimal `json:"rate"`
	Margin     decimal.Decimal `json:"margin"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewRateTier builds a tier row, validating its bracket and pricing values.
func NewRateTier(minAmount, maxAmount, rate, margin decimal.Decimal, createdBy string, now time.Time) (RateTier, error) {
	if minAmount.IsNegative() {
		return RateTier{}, fmt.Errorf("%w: tier min amount cannot be negative", apperrors.ErrDomainInvariant)
	}
	if !minAmount.LessThan(maxAmount) {
		return RateTier{}, fmt.Errorf("%w: tier min amount must be less than max amount", apperrors.ErrDomainInvariant)
	}
	if !rate.IsPositive() {
		return RateTier{}, fmt.Errorf("%w: tier rate must be positive", apperrors.ErrDomainInvariant)
	}
	if err := validateMargin(margin); err != nil {
		return RateTier{}, err
	}
	return RateTier{
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Rate:      rate,
		Margin:    margin,
		CreatedBy: createdBy,
		CreatedAt: now,
	}, nil
}

// Contains reports whether the amount falls inside the bracket, inclusive at
// both ends.
func (t RateTier) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(t.MinAmount) && amount.LessThanOrEqual(t.MaxAmount)
}

// EffectiveRate is the tier's rate with its own margin applied.
func (t RateTier) EffectiveRate() decimal.Decimal {
	return t.Rate.Mul(decimal.NewFromInt(1).Add(t.Margin))
}

func validateMargin(margin decimal.Decimal) error {
	if margin.IsNegative() || margin.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: margin must be between 0 and 1", apperrors.ErrDomainInvariant)
	}
	return nil
}
