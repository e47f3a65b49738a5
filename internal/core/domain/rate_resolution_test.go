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

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func resolutionFixtures(t *testing.T, asOf time.Time) (general, group, individual domain.ExchangeRate) {
	t.Helper()
	usd := mustCurrency(t, "USD")
	ngn := mustCurrency(t, "NGN")
	from := asOf.Add(-24 * time.Hour)

	g, err := domain.NewGeneralExchangeRate(usd, ngn,
		decimal.NewFromInt(1), decimal.NewFromInt(1500), decimal.NewFromFloat(0.05),
		from, nil, "test", "admin-1", from)
	require.NoError(t, err)
	g.ExchangeRateID = "rate-general"

	gr, err := domain.NewGroupExchangeRate("group-1", usd, ngn,
		decimal.NewFromInt(1), decimal.NewFromInt(1520), decimal.NewFromFloat(0.03),
		from, nil, "test", "admin-1", from)
	require.NoError(t, err)
	gr.ExchangeRateID = "rate-group"

	ind, err := domain.NewIndividualExchangeRate("client-1", usd, ngn,
		decimal.NewFromInt(1), decimal.NewFromInt(1540), decimal.NewFromFloat(0.01),
		from, nil, "test", "admin-1", from)
	require.NoError(t, err)
	ind.ExchangeRateID = "rate-individual"

	return *g, *gr, *ind
}

func TestResolveRate_Precedence(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	general, group, individual := resolutionFixtures(t, asOf)
	candidates := []domain.ExchangeRate{general, group, individual}

	tests := []struct {
		name          string
		clientID      string
		clientGroupID string
		wantRateID    string
	}{
		{"individual beats group and general", "client-1", "group-1", "rate-individual"},
		{"group beats general", "client-2", "group-1", "rate-group"},
		{"general is the fallback", "client-2", "", "rate-general"},
		{"anonymous query gets general", "", "", "rate-general"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := domain.ResolveRate(candidates, domain.RateQuery{
				ClientID:           tt.clientID,
				ClientGroupID:      tt.clientGroupID,
				BaseCurrencyCode:   "USD",
				TargetCurrencyCode: "NGN",
				AsOf:               asOf,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRateID, res.Rate.ExchangeRateID)
			assert.True(t, res.EffectiveRate.Equal(res.Rate.EffectiveRate()))
			assert.True(t, res.EffectiveMargin.Equal(res.Rate.Margin))
		})
	}
}

func TestResolveRate_IgnoresOtherPairsAndWindows(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	general, _, _ := resolutionFixtures(t, asOf)

	otherPair := general
	otherPair.ExchangeRateID = "rate-other-pair"
	otherPair.TargetCurrencyCode = "EUR"

	future := general
	future.ExchangeRateID = "rate-future"
	future.EffectiveFrom = asOf.Add(time.Hour)

	inactive := general
	inactive.ExchangeRateID = "rate-inactive"
	inactive.IsActive = false

	q := domain.RateQuery{BaseCurrencyCode: "USD", TargetCurrencyCode: "NGN", AsOf: asOf}

	res, err := domain.ResolveRate([]domain.ExchangeRate{otherPair, future, inactive, general}, q)
	require.NoError(t, err)
	assert.Equal(t, "rate-general", res.Rate.ExchangeRateID)

	_, err = domain.ResolveRate([]domain.ExchangeRate{otherPair, future, inactive}, q)
	assert.ErrorIs(t, err, apperrors.ErrNoApplicableRate)
}

func TestResolveRate_ForeignClientRatesNotLeaked(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	_, group, individual := resolutionFixtures(t, asOf)

	_, err := domain.ResolveRate([]domain.ExchangeRate{group, individual}, domain.RateQuery{
		ClientID:           "client-9",
		ClientGroupID:      "group-9",
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "NGN",
		AsOf:               asOf,
	})
	assert.ErrorIs(t, err, apperrors.ErrNoApplicableRate)
}

func TestResolveRate_LatestEffectiveFromWins(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	older, _, _ := resolutionFixtures(t, asOf)
	older.ExchangeRateID = "rate-older"

	newer := older
	newer.ExchangeRateID = "rate-newer"
	newer.EffectiveFrom = older.EffectiveFrom.Add(time.Hour)

	q := domain.RateQuery{BaseCurrencyCode: "USD", TargetCurrencyCode: "NGN", AsOf: asOf}

	res, err := domain.ResolveRate([]domain.ExchangeRate{older, newer}, q)
	require.NoError(t, err)
	assert.Equal(t, "rate-newer", res.Rate.ExchangeRateID)

	// Order of candidates does not matter.
	res, err = domain.ResolveRate([]domain.ExchangeRate{newer, older}, q)
	require.NoError(t, err)
	assert.Equal(t, "rate-newer", res.Rate.ExchangeRateID)
}

func TestResolveRate_IdenticalEffectiveFromTieBreaksOnID(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	a, _, _ := resolutionFixtures(t, asOf)
	a.ExchangeRateID = "rate-aaa"

	b := a
	b.ExchangeRateID = "rate-bbb"

	res, err := domain.ResolveRate([]domain.ExchangeRate{a, b}, domain.RateQuery{
		BaseCurrencyCode: "USD", TargetCurrencyCode: "NGN", AsOf: asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, "rate-bbb", res.Rate.ExchangeRateID)
}

func TestResolveRate_TieredGeneral(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	general, _, _ := resolutionFixtures(t, asOf)
	now := asOf.Add(-24 * time.Hour)

	lower, err := domain.NewRateTier(decimal.Zero, decimal.NewFromInt(1000), decimal.NewFromInt(1490), decimal.NewFromFloat(0.04), "admin-1", now)
	require.NoError(t, err)
	upper, err := domain.NewRateTier(decimal.NewFromInt(1000), decimal.NewFromInt(5000), decimal.NewFromInt(1480), decimal.NewFromFloat(0.03), "admin-1", now)
	require.NoError(t, err)
	require.NoError(t, general.SetTiers([]domain.RateTier{upper, lower}))

	query := func(amount *decimal.Decimal) domain.RateQuery {
		return domain.RateQuery{BaseCurrencyCode: "USD", TargetCurrencyCode: "NGN", AsOf: asOf, Amount: amount}
	}
	candidates := []domain.ExchangeRate{general}

	t.Run("boundary amount resolves to the lower tier", func(t *testing.T) {
		res, err := domain.ResolveRate(candidates, query(decimalPtr(decimal.NewFromInt(1000))))
		require.NoError(t, err)
		require.NotNil(t, res.Tier)
		assert.True(t, res.Tier.Rate.Equal(decimal.NewFromInt(1490)))
		assert.True(t, res.EffectiveRate.Equal(res.Tier.EffectiveRate()))
		assert.True(t, res.EffectiveMargin.Equal(decimal.NewFromFloat(0.04)))
	})

	t.Run("amount inside the second bracket", func(t *testing.T) {
		res, err := domain.ResolveRate(candidates, query(decimalPtr(decimal.NewFromInt(3000))))
		require.NoError(t, err)
		require.NotNil(t, res.Tier)
		assert.True(t, res.Tier.Rate.Equal(decimal.NewFromInt(1480)))
	})

	t.Run("amount outside every bracket", func(t *testing.T) {
		_, err := domain.ResolveRate(candidates, query(decimalPtr(decimal.NewFromInt(6000))))
		assert.ErrorIs(t, err, apperrors.ErrNoApplicableTier)
	})

	t.Run("no amount supplied falls back to the headline rate", func(t *testing.T) {
		res, err := domain.ResolveRate(candidates, query(nil))
		require.NoError(t, err)
		assert.Nil(t, res.Tier)
		assert.True(t, res.EffectiveRate.Equal(general.EffectiveRate()))
	})
}

func TestResolveRate_TiersIgnoredForNonGeneral(t *testing.T) {
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	_, _, individual := resolutionFixtures(t, asOf)

	res, err := domain.ResolveRate([]domain.ExchangeRate{individual}, domain.RateQuery{
		ClientID:           "client-1",
		BaseCurrencyCode:   "USD",
		TargetCurrencyCode: "NGN",
		AsOf:               asOf,
		Amount:             decimalPtr(decimal.NewFromInt(3000)),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Tier)
	assert.True(t, res.EffectiveRate.Equal(individual.EffectiveRate()))
}
