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

func mustCurrency(t *testing.T, code string) domain.Currency {
	t.Helper()
	cur, err := domain.GetCurrency(code)
	require.NoError(t, err)
	return cur
}

func newGeneralRate(t *testing.T, baseCode, targetCode string, baseValue, targetValue, margin float64, effectiveFrom time.Time, effectiveTo *time.Time) *domain.ExchangeRate {
	t.Helper()
	rate, err := domain.NewGeneralExchangeRate(
		mustCurrency(t, baseCode), mustCurrency(t, targetCode),
		decimal.NewFromFloat(baseValue), decimal.NewFromFloat(targetValue), decimal.NewFromFloat(margin),
		effectiveFrom, effectiveTo, "test", "admin-1", effectiveFrom)
	require.NoError(t, err)
	rate.ExchangeRateID = "rate-" + baseCode + targetCode
	return rate
}

func TestNewExchangeRate_Validation(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	usd := mustCurrency(t, "USD")
	eur := mustCurrency(t, "EUR")
	one := decimal.NewFromInt(1)
	zero := decimal.Zero

	tests := []struct {
		name        string
		base        domain.Currency
		target      domain.Currency
		baseValue   decimal.Decimal
		targetValue decimal.Decimal
		margin      decimal.Decimal
		wantErr     error
	}{
		{"same currency", usd, usd, one, one, zero, apperrors.ErrDomainInvariant},
		{"zero base value", usd, eur, zero, one, zero, apperrors.ErrDomainInvariant},
		{"negative target value", usd, eur, one, decimal.NewFromInt(-1), zero, apperrors.ErrDomainInvariant},
		{"margin above one", usd, eur, one, one, decimal.NewFromFloat(1.01), apperrors.ErrDomainInvariant},
		{"negative margin", usd, eur, one, one, decimal.NewFromFloat(-0.1), apperrors.ErrDomainInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewGeneralExchangeRate(tt.base, tt.target, tt.baseValue, tt.targetValue, tt.margin, now, nil, "test", "admin-1", now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("effectiveTo before effectiveFrom", func(t *testing.T) {
		before := now.Add(-time.Hour)
		_, err := domain.NewGeneralExchangeRate(usd, eur, one, one, zero, now, &before, "test", "admin-1", now)
		assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)
	})

	t.Run("group rate requires group id", func(t *testing.T) {
		_, err := domain.NewGroupExchangeRate("", usd, eur, one, one, zero, now, nil, "test", "admin-1", now)
		assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)
	})

	t.Run("individual rate requires client id", func(t *testing.T) {
		_, err := domain.NewIndividualExchangeRate("", usd, eur, one, one, zero, now, nil, "test", "admin-1", now)
		assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)
	})
}

func TestExchangeRate_EffectiveRate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0.05, now, nil)

	assert.True(t, rate.MarketRate().Equal(decimal.NewFromFloat(0.85)), "market rate: %s", rate.MarketRate())
	assert.True(t, rate.EffectiveRate().Equal(decimal.NewFromFloat(0.8925)), "effective rate: %s", rate.EffectiveRate())
}

func TestExchangeRate_ConvertToTarget_RoundsToTargetPrecision(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// 575.50 XOF buy 1 USD, house margin 5%.
	rate := newGeneralRate(t, "XOF", "USD", 575.50, 1, 0.05, now, nil)

	got, err := rate.ConvertToTarget(decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(18.25)), "got %s", got)
}

func TestExchangeRate_ConvertToTarget_NegativeAmount(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, now, nil)

	_, err := rate.ConvertToTarget(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestExchangeRate_RoundTrip_ZeroMargin(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, now, nil)

	amount := decimal.NewFromInt(100)
	inTarget, err := rate.ConvertToTarget(amount)
	require.NoError(t, err)

	backByDivision, err := rate.ConvertToBase(inTarget)
	require.NoError(t, err)
	backByInverse, err := rate.ConvertUsingInverseRate(inTarget)
	require.NoError(t, err)

	// With no margin the two return paths agree within rounding.
	assert.True(t, backByDivision.Equal(backByInverse), "division %s vs inverse %s", backByDivision, backByInverse)
	assert.True(t, backByDivision.Sub(amount).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)), "round trip drifted: %s", backByDivision)
}

func TestExchangeRate_InversePathCarriesMarginTwice(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// 1 USD = 0.8 EUR keeps the inverse rate exact (1.25), so the
	// forward-times-inverse product can be pinned without rounding slack.
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.8, 0.05, now, nil)

	product := rate.EffectiveRate().Mul(rate.InverseEffectiveRate())
	assert.True(t, product.Equal(decimal.NewFromFloat(1.1025)), "got %s", product)

	inTarget, err := rate.ConvertToTarget(decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, inTarget.Equal(decimal.NewFromFloat(840)), "got %s", inTarget)

	backByDivision, err := rate.ConvertToBase(inTarget)
	require.NoError(t, err)
	backByInverse, err := rate.ConvertUsingInverseRate(inTarget)
	require.NoError(t, err)

	// Each direction applies the markup, so the inverse-rate return path
	// exceeds the division path by (1+margin) squared.
	assert.True(t, backByDivision.Equal(decimal.NewFromInt(1000)), "got %s", backByDivision)
	assert.True(t, backByInverse.Equal(decimal.NewFromFloat(1102.50)), "got %s", backByInverse)
	assert.True(t, backByInverse.Equal(backByDivision.Mul(decimal.NewFromFloat(1.1025))))
}

func TestExchangeRate_InverseEffectiveRate_GrowsWithMargin(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	flat := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, now, nil)
	marked := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0.05, now, nil)

	assert.True(t, marked.InverseEffectiveRate().GreaterThan(flat.InverseEffectiveRate()))
	assert.True(t, marked.InverseMarketRate().Equal(flat.InverseMarketRate()))
}

func TestExchangeRate_GetConversionRate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0.05, now, nil)

	forward, err := rate.GetConversionRate("USD", "EUR")
	require.NoError(t, err)
	assert.True(t, forward.Equal(rate.EffectiveRate()))

	inverse, err := rate.GetConversionRate("EUR", "USD")
	require.NoError(t, err)
	assert.True(t, inverse.Equal(rate.InverseEffectiveRate()))

	_, err = rate.GetConversionRate("USD", "NGN")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCurrencyPair)
}

func TestExchangeRate_CalculateMarginAmount(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0.05, now, nil)

	got, err := rate.CalculateMarginAmount(decimal.NewFromInt(100), "USD", "EUR")
	require.NoError(t, err)
	// 100 * 0.8925 - 100 * 0.85 = 4.25
	assert.True(t, got.Equal(decimal.NewFromFloat(4.25)), "got %s", got)
}

func TestExchangeRate_IsEffectiveAt(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, &to)

	assert.True(t, rate.IsEffectiveAt(from), "inclusive at window start")
	assert.True(t, rate.IsEffectiveAt(to), "inclusive at window end")
	assert.True(t, rate.IsEffectiveAt(from.Add(time.Hour)))
	assert.False(t, rate.IsEffectiveAt(from.Add(-time.Millisecond)))
	assert.False(t, rate.IsEffectiveAt(to.Add(time.Millisecond)))

	rate.IsActive = false
	assert.False(t, rate.IsEffectiveAt(from.Add(time.Hour)), "inactive rates are never effective")
}

func TestExchangeRate_CanConvert(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, nil)
	now := from.Add(time.Hour)
	amount := decimal.NewFromInt(10)

	assert.True(t, rate.CanConvert(amount, "USD", "EUR", now))
	assert.True(t, rate.CanConvert(amount, "EUR", "USD", now))
	assert.False(t, rate.CanConvert(amount, "USD", "NGN", now))
	assert.False(t, rate.CanConvert(decimal.NewFromInt(-1), "USD", "EUR", now))
	assert.False(t, rate.CanConvert(amount, "USD", "EUR", from.Add(-time.Hour)))
}

func TestExchangeRate_UpdateCurrencyValues(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, now, nil)
	later := now.Add(time.Hour)

	err := rate.UpdateCurrencyValues(decimal.NewFromInt(1), decimal.NewFromFloat(0.90), decimal.NewFromFloat(0.02), "admin-2", later)
	require.NoError(t, err)
	assert.True(t, rate.TargetCurrencyValue.Equal(decimal.NewFromFloat(0.90)))
	assert.Equal(t, "admin-2", rate.LastUpdatedBy)
	assert.Equal(t, later, rate.LastUpdatedAt)

	err = rate.UpdateCurrencyValues(decimal.Zero, decimal.NewFromFloat(0.90), decimal.Zero, "admin-2", later)
	assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)
}

func TestExchangeRate_ExtendValidity(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, &to)
	now := from.Add(time.Hour)

	err := rate.ExtendValidity(to.Add(24*time.Hour), "admin-1", now)
	require.NoError(t, err)
	assert.Equal(t, to.Add(24*time.Hour), *rate.EffectiveTo)

	// Windows only move forward.
	err = rate.ExtendValidity(to, "admin-1", now)
	assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)

	err = rate.ExtendValidity(from.Add(-time.Hour), "admin-1", now)
	assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)
}

func TestExchangeRate_Deactivate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, nil)
	now := from.Add(time.Hour)

	rate.Deactivate("admin-1", now)
	assert.False(t, rate.IsActive)
	require.NotNil(t, rate.EffectiveTo)
	assert.Equal(t, now, *rate.EffectiveTo)

	// Second call is a no-op and does not move the window.
	rate.Deactivate("admin-2", now.Add(time.Hour))
	assert.Equal(t, now, *rate.EffectiveTo)
	assert.Equal(t, "admin-1", rate.LastUpdatedBy)
}

func TestExchangeRate_Expire(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, nil)

	successorStart := from.Add(48 * time.Hour)
	now := from.Add(time.Hour)

	err := rate.Expire(successorStart, "admin-1", now)
	require.NoError(t, err)
	require.NotNil(t, rate.EffectiveTo)
	assert.Equal(t, successorStart.Add(-time.Millisecond), *rate.EffectiveTo)
	assert.True(t, rate.IsActive, "successor has not started yet")

	// Successor already started: the rate is also switched off.
	rate2 := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, nil)
	err = rate2.Expire(from.Add(time.Hour), "admin-1", from.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, rate2.IsActive)

	// Successor starting at or before this rate's start is rejected.
	rate3 := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0, from, nil)
	err = rate3.Expire(from, "admin-1", now)
	assert.ErrorIs(t, err, apperrors.ErrDomainInvariant)
}

func TestExchangeRate_SetTiers_GeneralOnly(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	usd := mustCurrency(t, "USD")
	ngn := mustCurrency(t, "NGN")

	groupRate, err := domain.NewGroupExchangeRate("group-1", usd, ngn,
		decimal.NewFromInt(1), decimal.NewFromInt(1500), decimal.Zero,
		now, nil, "test", "admin-1", now)
	require.NoError(t, err)

	tier, err := domain.NewRateTier(decimal.Zero, decimal.NewFromInt(1000), decimal.NewFromInt(1500), decimal.Zero, "admin-1", now)
	require.NoError(t, err)

	assert.ErrorIs(t, groupRate.SetTiers([]domain.RateTier{tier}), apperrors.ErrInvalidRateType)

	generalRate := newGeneralRate(t, "USD", "NGN", 1, 1500, 0, now, nil)
	require.NoError(t, generalRate.SetTiers([]domain.RateTier{tier}))
	assert.Len(t, generalRate.Tiers, 1)
}

func TestExchangeRate_GetRateDescription(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := newGeneralRate(t, "USD", "EUR", 1, 0.85, 0.05, now, nil)

	desc := rate.GetRateDescription()
	assert.Contains(t, desc, "1 USD")
	assert.Contains(t, desc, "EUR")
	assert.Contains(t, desc, "Margin: 5%")

	directional, err := rate.GetDirectionalRateDescription("EUR", "USD")
	require.NoError(t, err)
	assert.Contains(t, directional, "1 EUR")

	_, err = rate.GetDirectionalRateDescription("EUR", "NGN")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCurrencyPair)
}
