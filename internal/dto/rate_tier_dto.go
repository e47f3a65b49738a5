package dto

import (
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TierRequest is one amount bracket in a tier replacement.
type TierRequest struct {
	MinAmount decimal.Decimal `json:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount" binding:"required"`
	Rate      decimal.Decimal `json:"rate" binding:"required"`
	Margin    decimal.Decimal `json:"margin"`
}

// ManageTiersRequest atomically replaces a General rate's tier collection.
type ManageTiersRequest struct {
	Tiers []TierRequest `json:"tiers" binding:"required,min=1,dive"`
}

// RateTierResponse is the API representation of a rate tier.
type RateTierResponse struct {
	RateTierID string          `json:"rateTierID"`
	MinAmount  decimal.Decimal `json:"minAmount"`
	MaxAmount  decimal.Decimal `json:"maxAmount"`
	Rate       decimal.Decimal `json:"rate"`
	Margin     decimal.Decimal `json:"margin"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ToRateTierResponses converts domain tiers to their API shape.
func ToRateTierResponses(tiers []domain.RateTier) []RateTierResponse {
	if len(tiers) == 0 {
		return nil
	}
	responses := make([]RateTierResponse, len(tiers))
	for i, tier := range tiers {
		responses[i] = RateTierResponse{
			RateTierID: tier.RateTierID,
			MinAmount:  tier.MinAmount,
			MaxAmount:  tier.MaxAmount,
			Rate:       tier.Rate,
			Margin:     tier.Margin,
			CreatedBy:  tier.CreatedBy,
			CreatedAt:  tier.CreatedAt,
		}
	}
	return responses
}
