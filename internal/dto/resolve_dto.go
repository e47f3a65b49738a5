package dto

import (
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ResolveRateRequest asks for the single applicable rate for a client and
// pair. AsOf defaults to the server clock; Amount is only consulted when the
// selected rate is tiered.
type ResolveRateRequest struct {
	ClientID           string           `form:"clientID" json:"clientID,omitempty"`
	ClientGroupID      string           `form:"clientGroupID" json:"clientGroupID,omitempty"`
	BaseCurrencyCode   string           `form:"base" json:"baseCurrencyCode" binding:"required,len=3,uppercase"`
	TargetCurrencyCode string           `form:"target" json:"targetCurrencyCode" binding:"required,len=3,uppercase"`
	AsOf               *time.Time       `form:"asOf" json:"asOf,omitempty"`
	Amount             *decimal.Decimal `form:"amount" json:"amount,omitempty"`
}

// ResolveRateResponse is the read-only outcome of a resolution.
type ResolveRateResponse struct {
	Rate            ExchangeRateResponse `json:"rate"`
	Tier            *RateTierResponse    `json:"tier,omitempty"`
	EffectiveRate   decimal.Decimal      `json:"effectiveRate"`
	EffectiveMargin decimal.Decimal      `json:"effectiveMargin"`
}

// ToResolveRateResponse converts a domain.RateResolution to its API shape.
func ToResolveRateResponse(res *domain.RateResolution) ResolveRateResponse {
	response := ResolveRateResponse{
		Rate:            ToExchangeRateResponse(&res.Rate),
		EffectiveRate:   res.EffectiveRate,
		EffectiveMargin: res.EffectiveMargin,
	}
	if res.Tier != nil {
		tiers := ToRateTierResponses([]domain.RateTier{*res.Tier})
		response.Tier = &tiers[0]
	}
	return response
}
