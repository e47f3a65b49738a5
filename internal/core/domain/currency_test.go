package domain_test

import (
	"testing"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrency(t *testing.T) {
	usd, err := domain.GetCurrency("USD")
	require.NoError(t, err)
	assert.Equal(t, "US Dollar", usd.Name)
	assert.EqualValues(t, 2, usd.DecimalPlaces)

	xof, err := domain.GetCurrency("XOF")
	require.NoError(t, err)
	assert.EqualValues(t, 0, xof.DecimalPlaces)

	_, err = domain.GetCurrency("ZZZ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.GetCurrency("usd")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "lookup is case sensitive; callers normalize")
}

func TestListCurrencies(t *testing.T) {
	currencies := domain.ListCurrencies()
	require.Len(t, currencies, 6)

	codes := make([]string, 0, len(currencies))
	for _, cur := range currencies {
		codes = append(codes, cur.Code)
	}
	assert.Equal(t, []string{"CNY", "EUR", "GHS", "NGN", "USD", "XOF"}, codes)
}

func TestCurrency_Equal(t *testing.T) {
	a := domain.Currency{Code: "USD", Name: "one"}
	b := domain.Currency{Code: "USD", Name: "another"}
	c := domain.Currency{Code: "EUR"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
