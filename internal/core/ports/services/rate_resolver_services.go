package services

import (
	"context"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/dto"
)

// RateResolverSvc selects the single applicable exchange rate (and tier) for
// a client, pair, instant and optional amount.
type RateResolverSvc interface {
	ResolveRate(ctx context.Context, req dto.ResolveRateRequest) (*domain.RateResolution, error)
}
