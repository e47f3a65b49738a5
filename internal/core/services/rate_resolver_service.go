package services

import (
	"context"
	"fmt"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
	"github.com/kobopay/fx_wallet_app/internal/dto"
)

// RateResolverService selects the single applicable exchange rate for a
// quote. Selection itself is a pure domain function; this service fetches
// the candidate rates and threads the instant.
type RateResolverService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateReader
	clock    ports.Clock
}

// NewRateResolverService creates a new RateResolverService.
func NewRateResolverService(rateRepo portsrepo.ExchangeRateReader, clock ports.Clock) *RateResolverService {
	return &RateResolverService{rateRepo: rateRepo, clock: clock}
}

// ResolveRate resolves the applicable rate, and tier when the selected rate
// is tiered and an amount was supplied. A missing rate is an error, never a
// silent default.
func (s *RateResolverService) ResolveRate(ctx context.Context, req dto.ResolveRateRequest) (*domain.RateResolution, error) {
	if _, err := domain.GetCurrency(req.BaseCurrencyCode); err != nil {
		return nil, err
	}
	if _, err := domain.GetCurrency(req.TargetCurrencyCode); err != nil {
		return nil, err
	}

	asOf := s.clock.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	candidates, err := s.rateRepo.FindApplicableRates(ctx, req.BaseCurrencyCode, req.TargetCurrencyCode, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate rates: %w", err)
	}

	resolution, err := domain.ResolveRate(candidates, domain.RateQuery{
		ClientID:           req.ClientID,
		ClientGroupID:      req.ClientGroupID,
		BaseCurrencyCode:   req.BaseCurrencyCode,
		TargetCurrencyCode: req.TargetCurrencyCode,
		AsOf:               asOf,
		Amount:             req.Amount,
	})
	if err != nil {
		return nil, err
	}

	s.LogDebug(ctx, "rate resolved",
		"rate_id", resolution.Rate.ExchangeRateID,
		"rate_type", string(resolution.Rate.Type),
		"effective_rate", resolution.EffectiveRate.String(),
	)
	return resolution, nil
}
