package domain

import (
	"fmt"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
)

// Currency is an immutable value describing a supported currency.
// Equality is by code.
type Currency struct {
	Code          string `json:"code"`   // ISO 4217 code, e.g. "USD"
	Symbol        string `json:"symbol"` // e.g. "$"
	Name          string `json:"name"`   // e.g. "US Dollar"
	DecimalPlaces int32  `json:"decimalPlaces"`
}

// Equal reports whether two currencies are the same, comparing by code.
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

// currencyRegistry is the fixed set of currencies the wallet supports.
// Rates and locks may only reference codes present here.
var currencyRegistry = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", DecimalPlaces: 2},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2},
	"NGN": {Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", DecimalPlaces: 2},
	"XOF": {Code: "XOF", Symbol: "CFA", Name: "West African CFA Franc", DecimalPlaces: 0},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", DecimalPlaces: 2},
	"GHS": {Code: "GHS", Symbol: "GH₵", Name: "Ghanaian Cedi", DecimalPlaces: 2},
}

// GetCurrency resolves a currency by code. Unknown codes are a hard error.
func GetCurrency(code string) (Currency, error) {
	cur, ok := currencyRegistry[code]
	if !ok {
		return Currency{}, fmt.Errorf("%w: unknown currency code '%s'", apperrors.ErrValidation, code)
	}
	return cur, nil
}

// ListCurrencies returns all supported currencies in stable code order.
func ListCurrencies() []Currency {
	codes := []string{"CNY", "EUR", "GHS", "NGN", "USD", "XOF"}
	currencies := make([]Currency, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, currencyRegistry[code])
	}
	return currencies
}

// decimalPlacesFor returns the precision for a code. Codes absent from the
// registry (rows predating a registry change) fall back to 2.
func decimalPlacesFor(code string) int32 {
	if cur, ok := currencyRegistry[code]; ok {
		return cur.DecimalPlaces
	}
	return 2
}
