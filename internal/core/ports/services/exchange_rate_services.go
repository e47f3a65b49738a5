package services

import (
	"context"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/dto"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data.
type ExchangeRateReaderSvc interface {
	// GetExchangeRateByID retrieves a rate with its tiers.
	GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// ListExchangeRates retrieves rates matching the request filter.
	ListExchangeRates(ctx context.Context, req dto.ListExchangeRatesRequest) ([]domain.ExchangeRate, int, error)
}

// ExchangeRateWriterSvc defines mutating operations on exchange rates.
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate creates a General, Group or Individual rate.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)

	// UpdateCurrencyValues replaces a rate's market quote and margin.
	UpdateCurrencyValues(ctx context.Context, rateID string, req dto.UpdateRateValuesRequest, updaterUserID string) (*domain.ExchangeRate, error)

	// ExtendValidity pushes a rate's validity window forward.
	ExtendValidity(ctx context.Context, rateID string, req dto.ExtendValidityRequest, updaterUserID string) (*domain.ExchangeRate, error)

	// DeactivateExchangeRate switches a rate off; a second call is a no-op.
	DeactivateExchangeRate(ctx context.Context, rateID string, updaterUserID string) (*domain.ExchangeRate, error)

	// ExpireExchangeRate closes a rate's window just before a successor starts.
	ExpireExchangeRate(ctx context.Context, rateID string, req dto.ExpireRateRequest, updaterUserID string) (*domain.ExchangeRate, error)

	// ManageTiers validates and atomically replaces a General rate's tiers.
	ManageTiers(ctx context.Context, rateID string, req dto.ManageTiersRequest, updaterUserID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange rate service interfaces.
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
