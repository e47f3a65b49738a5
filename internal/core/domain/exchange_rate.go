package domain

import (
	"fmt"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateType is the precedence tier of an exchange rate. Individual rates are
// the most specific and win over Group rates, which win over General rates.
type RateType string

const (
	RateTypeGeneral    RateType = "GENERAL"
	RateTypeGroup      RateType = "GROUP"
	RateTypeIndividual RateType = "INDIVIDUAL"
)

var one = decimal.NewFromInt(1)

// ExchangeRate is the pricing aggregate for a directional currency pair.
// The market quote is expressed as "BaseCurrencyValue units of base equal
// TargetCurrencyValue units of target"; Margin is the fractional markup the
// house adds on top. Tiers are populated only for General rates.
//
// Superseded rates are deactivated or expired, never deleted.
type ExchangeRate struct {
	ExchangeRateID      string          `json:"exchangeRateID"`
	BaseCurrencyCode    string          `json:"baseCurrencyCode"`
	TargetCurrencyCode  string          `json:"targetCurrencyCode"`
	BaseCurrencyValue   decimal.Decimal `json:"baseCurrencyValue"`
	TargetCurrencyValue decimal.Decimal `json:"targetCurrencyValue"`
	Margin              decimal.Decimal `json:"margin"`
	Type                RateType        `json:"type"`
	ClientID            string          `json:"clientID,omitempty"`      // set iff Type == INDIVIDUAL
	ClientGroupID       string          `json:"clientGroupID,omitempty"` // set iff Type == GROUP
	EffectiveFrom       time.Time       `json:"effectiveFrom"`
	EffectiveTo         *time.Time      `json:"effectiveTo,omitempty"`
	IsActive            bool            `json:"isActive"`
	Source              string          `json:"source"`
	Tiers               []RateTier      `json:"tiers,omitempty"`
	AuditFields
}

// newExchangeRate is the shared construction path behind the three factories.
func newExchangeRate(rateType RateType, base, target Currency, baseValue, targetValue, margin decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time, source, createdBy string, now time.Time) (*ExchangeRate, error) {
	if base.Equal(target) {
		return nil, fmt.Errorf("%w: base and target currencies must differ", apperrors.ErrDomainInvariant)
	}
	if err := validateRateValues(baseValue, targetValue, margin); err != nil {
		return nil, err
	}
	if err := validateWindow(effectiveFrom, effectiveTo); err != nil {
		return nil, err
	}
	return &ExchangeRate{
		BaseCurrencyCode:    base.Code,
		TargetCurrencyCode:  target.Code,
		BaseCurrencyValue:   baseValue,
		TargetCurrencyValue: targetValue,
		Margin:              margin,
		Type:                rateType,
		EffectiveFrom:       effectiveFrom,
		EffectiveTo:         effectiveTo,
		IsActive:            true,
		Source:              source,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}, nil
}

// NewGeneralExchangeRate creates a rate applicable to every client.
func NewGeneralExchangeRate(base, target Currency, baseValue, targetValue, margin decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time, source, createdBy string, now time.Time) (*ExchangeRate, error) {
	return newExchangeRate(RateTypeGeneral, base, target, baseValue, targetValue, margin, effectiveFrom, effectiveTo, source, createdBy, now)
}

// NewGroupExchangeRate creates a rate applicable to a client group.
func NewGroupExchangeRate(clientGroupID string, base, target Currency, baseValue, targetValue, margin decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time, source, createdBy string, now time.Time) (*ExchangeRate, error) {
	if clientGroupID == "" {
		return nil, fmt.Errorf("%w: group rate requires a client group id", apperrors.ErrDomainInvariant)
	}
	rate, err := newExchangeRate(RateTypeGroup, base, target, baseValue, targetValue, margin, effectiveFrom, effectiveTo, source, createdBy, now)
	if err != nil {
		return nil, err
	}
	rate.ClientGroupID = clientGroupID
	return rate, nil
}

// NewIndividualExchangeRate creates a rate applicable to a single client.
func NewIndividualExchangeRate(clientID string, base, target Currency, baseValue, targetValue, margin decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time, source, createdBy string, now time.Time) (*ExchangeRate, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: individual rate requires a client id", apperrors.ErrDomainInvariant)
	}
	rate, err := newExchangeRate(RateTypeIndividual, base, target, baseValue, targetValue, margin, effectiveFrom, effectiveTo, source, createdBy, now)
	if err != nil {
		return nil, err
	}
	rate.ClientID = clientID
	return rate, nil
}

func validateRateValues(baseValue, targetValue, margin decimal.Decimal) error {
	if !baseValue.IsPositive() {
		return fmt.Errorf("%w: base currency value must be positive", apperrors.ErrDomainInvariant)
	}
	if !targetValue.IsPositive() {
		return fmt.Errorf("%w: target currency value must be positive", apperrors.ErrDomainInvariant)
	}
	return validateMargin(margin)
}

func validateWindow(effectiveFrom time.Time, effectiveTo *time.Time) error {
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return fmt.Errorf("%w: effectiveTo must be strictly after effectiveFrom", apperrors.ErrDomainInvariant)
	}
	return nil
}

// MarketRate is the base-to-target conversion rate with no margin applied.
func (r *ExchangeRate) MarketRate() decimal.Decimal {
	return r.TargetCurrencyValue.Div(r.BaseCurrencyValue)
}

// EffectiveRate is the market rate inflated by the margin fraction. This is
// the base-to-target rate clients actually pay.
func (r *ExchangeRate) EffectiveRate() decimal.Decimal {
	return r.MarketRate().Mul(one.Add(r.Margin))
}

// InverseMarketRate is the target-to-base conversion rate with no margin.
func (r *ExchangeRate) InverseMarketRate() decimal.Decimal {
	return r.BaseCurrencyValue.Div(r.TargetCurrencyValue)
}

// InverseEffectiveRate is the target-to-base rate with the margin applied.
func (r *ExchangeRate) InverseEffectiveRate() decimal.Decimal {
	return r.InverseMarketRate().Mul(one.Add(r.Margin))
}

// IsExpired reports whether the rate's validity window has closed.
func (r *ExchangeRate) IsExpired(now time.Time) bool {
	return r.EffectiveTo != nil && r.EffectiveTo.Before(now)
}

// IsFutureRate reports whether the rate has not yet become usable.
func (r *ExchangeRate) IsFutureRate(now time.Time) bool {
	return r.EffectiveFrom.After(now)
}

// IsCurrent reports whether the rate is active and inside its window.
func (r *ExchangeRate) IsCurrent(now time.Time) bool {
	return r.IsActive && !r.IsExpired(now) && !r.IsFutureRate(now)
}

// IsEffectiveAt reports whether the rate is usable at the given instant.
func (r *ExchangeRate) IsEffectiveAt(at time.Time) bool {
	if !r.IsActive || at.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || !at.After(*r.EffectiveTo)
}

// ConvertToTarget converts a base-currency amount to the target currency at
// the effective rate, rounded half-away-from-zero to the target currency's
// decimal precision.
func (r *ExchangeRate) ConvertToTarget(amountInBase decimal.Decimal) (decimal.Decimal, error) {
	if amountInBase.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: conversion amount cannot be negative", apperrors.ErrInvalidAmount)
	}
	return amountInBase.Mul(r.EffectiveRate()).Round(decimalPlacesFor(r.TargetCurrencyCode)), nil
}

// ConvertToBase converts a target-currency amount back to the base currency
// by dividing through the effective rate.
func (r *ExchangeRate) ConvertToBase(amountInTarget decimal.Decimal) (decimal.Decimal, error) {
	if amountInTarget.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: conversion amount cannot be negative", apperrors.ErrInvalidAmount)
	}
	return amountInTarget.Div(r.EffectiveRate()).Round(decimalPlacesFor(r.BaseCurrencyCode)), nil
}

// ConvertUsingInverseRate converts a target-currency amount to base currency
// by multiplying with the inverse effective rate. At zero margin this is the
// same answer as ConvertToBase within rounding; with a margin both directions
// carry the markup.
func (r *ExchangeRate) ConvertUsingInverseRate(amountInTarget decimal.Decimal) (decimal.Decimal, error) {
	if amountInTarget.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: conversion amount cannot be negative", apperrors.ErrInvalidAmount)
	}
	return amountInTarget.Mul(r.InverseEffectiveRate()).Round(decimalPlacesFor(r.BaseCurrencyCode)), nil
}

// GetConversionRate returns the effective rate for converting from -> to, in
// either direction of the pair.
func (r *ExchangeRate) GetConversionRate(fromCode, toCode string) (decimal.Decimal, error) {
	switch {
	case fromCode == r.BaseCurrencyCode && toCode == r.TargetCurrencyCode:
		return r.EffectiveRate(), nil
	case fromCode == r.TargetCurrencyCode && toCode == r.BaseCurrencyCode:
		return r.InverseEffectiveRate(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: rate covers %s/%s, not %s/%s",
			apperrors.ErrUnsupportedCurrencyPair, r.BaseCurrencyCode, r.TargetCurrencyCode, fromCode, toCode)
	}
}

// ConvertAmount converts an amount between the two currencies of the pair,
// dispatching on direction.
func (r *ExchangeRate) ConvertAmount(amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: conversion amount cannot be negative", apperrors.ErrInvalidAmount)
	}
	rate, err := r.GetConversionRate(fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(decimalPlacesFor(toCode)), nil
}

// CanConvert reports whether a conversion is possible right now. It never
// returns an error: unknown pairs, negative amounts and out-of-window rates
// all answer false.
func (r *ExchangeRate) CanConvert(amount decimal.Decimal, fromCode, toCode string, now time.Time) bool {
	if !r.IsCurrent(now) || amount.IsNegative() {
		return false
	}
	directMatch := fromCode == r.BaseCurrencyCode && toCode == r.TargetCurrencyCode
	inverseMatch := fromCode == r.TargetCurrencyCode && toCode == r.BaseCurrencyCode
	return directMatch || inverseMatch
}

// CalculateMarginAmount returns the house's take on a conversion: the
// difference between the amount converted at the effective rate and the same
// amount converted at the margin-free market rate.
func (r *ExchangeRate) CalculateMarginAmount(amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: conversion amount cannot be negative", apperrors.ErrInvalidAmount)
	}
	var effective, market decimal.Decimal
	switch {
	case fromCode == r.BaseCurrencyCode && toCode == r.TargetCurrencyCode:
		effective, market = r.EffectiveRate(), r.MarketRate()
	case fromCode == r.TargetCurrencyCode && toCode == r.BaseCurrencyCode:
		effective, market = r.InverseEffectiveRate(), r.InverseMarketRate()
	default:
		return decimal.Zero, fmt.Errorf("%w: rate covers %s/%s, not %s/%s",
			apperrors.ErrUnsupportedCurrencyPair, r.BaseCurrencyCode, r.TargetCurrencyCode, fromCode, toCode)
	}
	return amount.Mul(effective).Sub(amount.Mul(market)).Round(decimalPlacesFor(toCode)), nil
}

// GetRateDescription formats the base-to-target quote for display.
func (r *ExchangeRate) GetRateDescription() string {
	return fmt.Sprintf("1 %s = %s %s (Market: %s, Margin: %s%%)",
		r.BaseCurrencyCode,
		r.EffectiveRate().Round(6).String(),
		r.TargetCurrencyCode,
		r.MarketRate().Round(6).String(),
		r.Margin.Mul(decimal.NewFromInt(100)).String(),
	)
}

// GetInverseRateDescription formats the target-to-base quote for display.
func (r *ExchangeRate) GetInverseRateDescription() string {
	return fmt.Sprintf("1 %s = %s %s (Market: %s, Margin: %s%%)",
		r.TargetCurrencyCode,
		r.InverseEffectiveRate().Round(6).String(),
		r.BaseCurrencyCode,
		r.InverseMarketRate().Round(6).String(),
		r.Margin.Mul(decimal.NewFromInt(100)).String(),
	)
}

// GetDirectionalRateDescription formats the quote for an explicit direction.
func (r *ExchangeRate) GetDirectionalRateDescription(fromCode, toCode string) (string, error) {
	switch {
	case fromCode == r.BaseCurrencyCode && toCode == r.TargetCurrencyCode:
		return r.GetRateDescription(), nil
	case fromCode == r.TargetCurrencyCode && toCode == r.BaseCurrencyCode:
		return r.GetInverseRateDescription(), nil
	default:
		return "", fmt.Errorf("%w: rate covers %s/%s, not %s/%s",
			apperrors.ErrUnsupportedCurrencyPair, r.BaseCurrencyCode, r.TargetCurrencyCode, fromCode, toCode)
	}
}

// UpdateCurrencyValues replaces the market quote and margin, re-validating
// the pricing invariants.
func (r *ExchangeRate) UpdateCurrencyValues(baseValue, targetValue, margin decimal.Decimal, updatedBy string, now time.Time) error {
	if err := validateRateValues(baseValue, targetValue, margin); err != nil {
		return err
	}
	r.BaseCurrencyValue = baseValue
	r.TargetCurrencyValue = targetValue
	r.Margin = margin
	r.touch(updatedBy, now)
	return nil
}

// ExtendValidity pushes the end of the validity window forward. The new end
// must stay after effectiveFrom and after the current end when one is set.
func (r *ExchangeRate) ExtendValidity(newEffectiveTo time.Time, updatedBy string, now time.Time) error {
	if !newEffectiveTo.After(r.EffectiveFrom) {
		return fmt.Errorf("%w: new effectiveTo must be after effectiveFrom", apperrors.ErrDomainInvariant)
	}
	if r.EffectiveTo != nil && !newEffectiveTo.After(*r.EffectiveTo) {
		return fmt.Errorf("%w: validity can only be extended forward", apperrors.ErrDomainInvariant)
	}
	r.EffectiveTo = &newEffectiveTo
	r.touch(updatedBy, now)
	return nil
}

// Deactivate switches the rate off. A second call is a no-op. Open-ended
// rates get their window closed at the deactivation instant.
func (r *ExchangeRate) Deactivate(updatedBy string, now time.Time) {
	if !r.IsActive {
		return
	}
	r.IsActive = false
	if r.EffectiveTo == nil {
		end := now
		r.EffectiveTo = &end
	}
	r.touch(updatedBy, now)
}

// Expire closes the rate's window one tick before a successor rate starts.
// If the successor already started, the rate is also deactivated.
func (r *ExchangeRate) Expire(newRateEffectiveFrom time.Time, updatedBy string, now time.Time) error {
	cutoff := newRateEffectiveFrom.Add(-time.Millisecond)
	if !cutoff.After(r.EffectiveFrom) {
		return fmt.Errorf("%w: successor rate must start after this rate's effectiveFrom", apperrors.ErrDomainInvariant)
	}
	r.EffectiveTo = &cutoff
	if !newRateEffectiveFrom.After(now) {
		r.IsActive = false
	}
	r.touch(updatedBy, now)
	return nil
}

// SetTiers replaces the tier collection. Tiers may only be attached to
// General rates; bracket contiguity is validated by the tier-management
// operation before this is called.
func (r *ExchangeRate) SetTiers(tiers []RateTier) error {
	if r.Type != RateTypeGeneral {
		return fmt.Errorf("%w: tiers may only be attached to general rates", apperrors.ErrInvalidRateType)
	}
	r.Tiers = tiers
	return nil
}

func (r *ExchangeRate) touch(updatedBy string, now time.Time) {
	r.LastUpdatedAt = now
	r.LastUpdatedBy = updatedBy
}
