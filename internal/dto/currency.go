package dto

import (
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
)

// CurrencyResponse defines the data returned for a registry currency.
type CurrencyResponse struct {
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	DecimalPlaces int32  `json:"decimalPlaces"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO.
func ToCurrencyResponse(cur domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:          cur.Code,
		Symbol:        cur.Symbol,
		Name:          cur.Name,
		DecimalPlaces: cur.DecimalPlaces,
	}
}

// ToListCurrencyResponse converts a slice of registry currencies.
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, cur := range currencies {
		res[i] = ToCurrencyResponse(cur)
	}
	return res
}
