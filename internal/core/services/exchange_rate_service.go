package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
	"github.com/kobopay/fx_wallet_app/internal/dto"
	"github.com/google/uuid"
)

// ExchangeRateService provides business logic for exchange rate lifecycle
// management: creation per precedence type, value updates, window changes
// and tier management.
type ExchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
	clients  portsrepo.ClientDirectory
	minimums portsrepo.MinimumAmountConfig
	clock    ports.Clock
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, clients portsrepo.ClientDirectory, minimums portsrepo.MinimumAmountConfig, clock ports.Clock) *ExchangeRateService {
	return &ExchangeRateService{
		rateRepo: rateRepo,
		clients:  clients,
		minimums: minimums,
		clock:    clock,
	}
}

// CreateExchangeRate handles the creation of a new exchange rate of any
// precedence type. Individual and Group targets are validated against the
// client directory before the rate is persisted.
func (s *ExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	base, err := domain.GetCurrency(req.BaseCurrencyCode)
	if err != nil {
		return nil, err
	}
	target, err := domain.GetCurrency(req.TargetCurrencyCode)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var rate *domain.ExchangeRate

	switch req.Type {
	case domain.RateTypeIndividual:
		if err := s.checkClient(ctx, req.ClientID); err != nil {
			return nil, err
		}
		rate, err = domain.NewIndividualExchangeRate(req.ClientID, base, target,
			req.BaseCurrencyValue, req.TargetCurrencyValue, req.Margin,
			req.EffectiveFrom, req.EffectiveTo, req.Source, creatorUserID, now)
	case domain.RateTypeGroup:
		if err := s.checkClientGroup(ctx, req.ClientGroupID); err != nil {
			return nil, err
		}
		rate, err = domain.NewGroupExchangeRate(req.ClientGroupID, base, target,
			req.BaseCurrencyValue, req.TargetCurrencyValue, req.Margin,
			req.EffectiveFrom, req.EffectiveTo, req.Source, creatorUserID, now)
	case domain.RateTypeGeneral:
		if req.ClientID != "" || req.ClientGroupID != "" {
			return nil, fmt.Errorf("%w: general rates must not target a client or group", apperrors.ErrValidation)
		}
		rate, err = domain.NewGeneralExchangeRate(base, target,
			req.BaseCurrencyValue, req.TargetCurrencyValue, req.Margin,
			req.EffectiveFrom, req.EffectiveTo, req.Source, creatorUserID, now)
	default:
		return nil, fmt.Errorf("%w: unknown rate type '%s'", apperrors.ErrValidation, req.Type)
	}
	if err != nil {
		return nil, err
	}

	rate.ExchangeRateID = uuid.NewString()
	if err := s.rateRepo.SaveExchangeRate(ctx, *rate); err != nil {
		s.LogError(ctx, err, "failed to save exchange rate")
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}
	return rate, nil
}

func (s *ExchangeRateService) checkClient(ctx context.Context, clientID string) error {
	if clientID == "" {
		return fmt.Errorf("%w: individual rate requires a client id", apperrors.ErrDomainInvariant)
	}
	exists, err := s.clients.ClientExists(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to validate client '%s': %w", clientID, err)
	}
	if !exists {
		return fmt.Errorf("%w: client '%s' not found", apperrors.ErrValidation, clientID)
	}
	active, err := s.clients.ClientIsActive(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to validate client '%s': %w", clientID, err)
	}
	if !active {
		return fmt.Errorf("%w: client '%s' is not active", apperrors.ErrValidation, clientID)
	}
	return nil
}

func (s *ExchangeRateService) checkClientGroup(ctx context.Context, clientGroupID string) error {
	if clientGroupID == "" {
		return fmt.Errorf("%w: group rate requires a client group id", apperrors.ErrDomainInvariant)
	}
	exists, err := s.clients.ClientGroupExists(ctx, clientGroupID)
	if err != nil {
		return fmt.Errorf("failed to validate client group '%s': %w", clientGroupID, err)
	}
	if !exists {
		return fmt.Errorf("%w: client group '%s' not found", apperrors.ErrValidation, clientGroupID)
	}
	active, err := s.clients.ClientGroupIsActive(ctx, clientGroupID)
	if err != nil {
		return fmt.Errorf("failed to validate client group '%s': %w", clientGroupID, err)
	}
	if !active {
		return fmt.Errorf("%w: client group '%s' is not active", apperrors.ErrValidation, clientGroupID)
	}
	return nil
}

// GetExchangeRateByID retrieves a rate, including its tiers, by id.
func (s *ExchangeRateService) GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

// ListExchangeRates retrieves rates matching the request filter.
func (s *ExchangeRateService) ListExchangeRates(ctx context.Context, req dto.ListExchangeRatesRequest) ([]domain.ExchangeRate, int, error) {
	filter := portsrepo.ExchangeRateFilter{
		BaseCurrencyCode:   req.BaseCurrencyCode,
		TargetCurrencyCode: req.TargetCurrencyCode,
		Type:               req.Type,
		ActiveOnly:         req.ActiveOnly,
	}
	rates, total, err := s.rateRepo.ListExchangeRates(ctx, filter, req.Page, req.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exchange rates in service: %w", err)
	}
	return rates, total, nil
}

// UpdateCurrencyValues replaces a rate's market quote and margin.
func (s *ExchangeRateService) UpdateCurrencyValues(ctx context.Context, rateID string, req dto.UpdateRateValuesRequest, updaterUserID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := rate.UpdateCurrencyValues(req.BaseCurrencyValue, req.TargetCurrencyValue, req.Margin, updaterUserID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.rateRepo.UpdateExchangeRate(ctx, *rate); err != nil {
		s.LogError(ctx, err, "failed to update exchange rate values", "rate_id", rateID)
		return nil, fmt.Errorf("failed to update exchange rate in service: %w", err)
	}
	return rate, nil
}

// ExtendValidity pushes a rate's validity window forward.
func (s *ExchangeRateService) ExtendValidity(ctx context.Context, rateID string, req dto.ExtendValidityRequest, updaterUserID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := rate.ExtendValidity(req.NewEffectiveTo, updaterUserID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.rateRepo.UpdateExchangeRate(ctx, *rate); err != nil {
		return nil, fmt.Errorf("failed to extend exchange rate validity in service: %w", err)
	}
	return rate, nil
}

// DeactivateExchangeRate switches a rate off. Deactivating an inactive rate
// is a no-op. Superseded rates are kept for audit, never deleted.
func (s *ExchangeRateService) DeactivateExchangeRate(ctx context.Context, rateID string, updaterUserID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	rate.Deactivate(updaterUserID, s.clock.Now())
	if err := s.rateRepo.UpdateExchangeRate(ctx, *rate); err != nil {
		return nil, fmt.Errorf("failed to deactivate exchange rate in service: %w", err)
	}
	return rate, nil
}

// ExpireExchangeRate closes a rate's window one tick before a successor
// rate's start.
func (s *ExchangeRateService) ExpireExchangeRate(ctx context.Context, rateID string, req dto.ExpireRateRequest, updaterUserID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if err := rate.Expire(req.NewRateEffectiveFrom, updaterUserID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.rateRepo.UpdateExchangeRate(ctx, *rate); err != nil {
		return nil, fmt.Errorf("failed to expire exchange rate in service: %w", err)
	}
	return rate, nil
}

// ManageTiers validates and atomically replaces a General rate's tier
// collection. Brackets must be sorted, contiguous and non-overlapping, and
// the highest boundary must equal the pair's configured minimum transaction
// amount. An empty collection clears the rate back to flat pricing.
func (s *ExchangeRateService) ManageTiers(ctx context.Context, rateID string, req dto.ManageTiersRequest, updaterUserID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if rate.Type != domain.RateTypeGeneral {
		return nil, fmt.Errorf("%w: tiers may only be managed on general rates, rate is %s", apperrors.ErrInvalidRateType, rate.Type)
	}

	now := s.clock.Now()
	tiers := make([]domain.RateTier, 0, len(req.Tiers))
	for _, tr := range req.Tiers {
		tier, err := domain.NewRateTier(tr.MinAmount, tr.MaxAmount, tr.Rate, tr.Margin, updaterUserID, now)
		if err != nil {
			return nil, err
		}
		tier.RateTierID = uuid.NewString()
		tiers = append(tiers, tier)
	}
	if len(tiers) > 0 {
		sort.Slice(tiers, func(i, j int) bool {
			return tiers[i].MinAmount.LessThan(tiers[j].MinAmount)
		})
		if err := validateTierChain(tiers); err != nil {
			return nil, err
		}
		if err := s.checkTierBoundary(ctx, rate, tiers, now); err != nil {
			return nil, err
		}
	}

	if err := s.rateRepo.ReplaceTiers(ctx, rateID, tiers); err != nil {
		s.LogError(ctx, err, "failed to replace rate tiers", "rate_id", rateID)
		return nil, fmt.Errorf("failed to replace tiers in service: %w", err)
	}
	if err := rate.SetTiers(tiers); err != nil {
		return nil, err
	}
	return rate, nil
}

// validateTierChain checks that sorted brackets form a contiguous,
// non-overlapping chain: each tier's maxAmount is the next tier's minAmount.
func validateTierChain(tiers []domain.RateTier) error {
	for i := 0; i < len(tiers)-1; i++ {
		if !tiers[i].MaxAmount.Equal(tiers[i+1].MinAmount) {
			return fmt.Errorf("%w: tier ending at %s does not meet tier starting at %s",
				apperrors.ErrTierOverlap, tiers[i].MaxAmount.String(), tiers[i+1].MinAmount.String())
		}
	}
	return nil
}

func (s *ExchangeRateService) checkTierBoundary(ctx context.Context, rate *domain.ExchangeRate, tiers []domain.RateTier, now time.Time) error {
	minimum, err := s.minimums.GetApplicableMinimum(ctx, rate.BaseCurrencyCode, rate.TargetCurrencyCode, now)
	if err != nil {
		return fmt.Errorf("failed to fetch minimum transaction amount: %w", err)
	}
	if minimum == nil {
		return fmt.Errorf("%w: no minimum transaction amount configured for %s/%s",
			apperrors.ErrTierBoundaryMismatch, rate.BaseCurrencyCode, rate.TargetCurrencyCode)
	}
	last := tiers[len(tiers)-1]
	if !last.MaxAmount.Equal(*minimum) {
		return fmt.Errorf("%w: highest tier ends at %s, configured minimum is %s",
			apperrors.ErrTierBoundaryMismatch, last.MaxAmount.String(), minimum.String())
	}
	return nil
}
