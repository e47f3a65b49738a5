package dto

import (
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExchangeRateRequest defines the payload for creating a rate of any
// precedence type. ClientID is required for INDIVIDUAL rates, ClientGroupID
// for GROUP rates; the service enforces the pairing.
type CreateExchangeRateRequest struct {
	BaseCurrencyCode    string          `json:"baseCurrencyCode" binding:"required,len=3,uppercase"`
	TargetCurrencyCode  string          `json:"targetCurrencyCode" binding:"required,len=3,uppercase"`
	BaseCurrencyValue   decimal.Decimal `json:"baseCurrencyValue" binding:"required"`
	TargetCurrencyValue decimal.Decimal `json:"targetCurrencyValue" binding:"required"`
	Margin              decimal.Decimal `json:"margin"`
	Type                domain.RateType `json:"type" binding:"required,oneof=GENERAL GROUP INDIVIDUAL"`
	ClientID            string          `json:"clientID,omitempty"`
	ClientGroupID       string          `json:"clientGroupID,omitempty"`
	EffectiveFrom       time.Time       `json:"effectiveFrom" binding:"required"`
	EffectiveTo         *time.Time      `json:"effectiveTo,omitempty"`
	Source              string          `json:"source"`
}

// UpdateRateValuesRequest replaces the market quote and margin of a rate.
type UpdateRateValuesRequest struct {
	BaseCurrencyValue   decimal.Decimal `json:"baseCurrencyValue" binding:"required"`
	TargetCurrencyValue decimal.Decimal `json:"targetCurrencyValue" binding:"required"`
	Margin              decimal.Decimal `json:"margin"`
}

// ExtendValidityRequest pushes a rate's validity window forward.
type ExtendValidityRequest struct {
	NewEffectiveTo time.Time `json:"newEffectiveTo" binding:"required"`
}

// ExpireRateRequest closes a rate's window just before a successor starts.
type ExpireRateRequest struct {
	NewRateEffectiveFrom time.Time `json:"newRateEffectiveFrom" binding:"required"`
}

// ListExchangeRatesRequest filters a rate listing.
type ListExchangeRatesRequest struct {
	BaseCurrencyCode   *string          `form:"base"`
	TargetCurrencyCode *string          `form:"target"`
	Type               *domain.RateType `form:"type"`
	ActiveOnly         bool             `form:"activeOnly"`
	Page               int              `form:"page,default=1"`
	PageSize           int              `form:"pageSize,default=20"`
}

// ExchangeRateResponse is the API representation of an exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID      string             `json:"exchangeRateID"`
	BaseCurrencyCode    string             `json:"baseCurrencyCode"`
	TargetCurrencyCode  string             `json:"targetCurrencyCode"`
	BaseCurrencyValue   decimal.Decimal    `json:"baseCurrencyValue"`
	TargetCurrencyValue decimal.Decimal    `json:"targetCurrencyValue"`
	Margin              decimal.Decimal    `json:"margin"`
	Type                domain.RateType    `json:"type"`
	ClientID            string             `json:"clientID,omitempty"`
	ClientGroupID       string             `json:"clientGroupID,omitempty"`
	MarketRate          decimal.Decimal    `json:"marketRate"`
	EffectiveRate       decimal.Decimal    `json:"effectiveRate"`
	Description         string             `json:"description"`
	EffectiveFrom       time.Time          `json:"effectiveFrom"`
	EffectiveTo         *time.Time         `json:"effectiveTo,omitempty"`
	IsActive            bool               `json:"isActive"`
	Source              string             `json:"source"`
	Tiers               []RateTierResponse `json:"tiers,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	CreatedBy           string             `json:"createdBy"`
	LastUpdatedAt       time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy       string             `json:"lastUpdatedBy"`
}

// ListExchangeRatesResponse wraps a paginated rate listing.
type ListExchangeRatesResponse struct {
	Rates    []ExchangeRateResponse `json:"rates"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to its API shape.
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:      rate.ExchangeRateID,
		BaseCurrencyCode:    rate.BaseCurrencyCode,
		TargetCurrencyCode:  rate.TargetCurrencyCode,
		BaseCurrencyValue:   rate.BaseCurrencyValue,
		TargetCurrencyValue: rate.TargetCurrencyValue,
		Margin:              rate.Margin,
		Type:                rate.Type,
		ClientID:            rate.ClientID,
		ClientGroupID:       rate.ClientGroupID,
		MarketRate:          rate.MarketRate(),
		EffectiveRate:       rate.EffectiveRate(),
		Description:         rate.GetRateDescription(),
		EffectiveFrom:       rate.EffectiveFrom,
		EffectiveTo:         rate.EffectiveTo,
		IsActive:            rate.IsActive,
		Source:              rate.Source,
		Tiers:               ToRateTierResponses(rate.Tiers),
		CreatedAt:           rate.CreatedAt,
		CreatedBy:           rate.CreatedBy,
		LastUpdatedAt:       rate.LastUpdatedAt,
		LastUpdatedBy:       rate.LastUpdatedBy,
	}
}

// ToListExchangeRatesResponse converts a page of rates.
func ToListExchangeRatesResponse(rates []domain.ExchangeRate, total, page, pageSize int) ListExchangeRatesResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return ListExchangeRatesResponse{Rates: responses, Total: total, Page: page, PageSize: pageSize}
}
