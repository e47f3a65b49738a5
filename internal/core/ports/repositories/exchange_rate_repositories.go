package repositories

import (
	"context"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
)

// ExchangeRateFilter narrows an exchange rate listing.
type ExchangeRateFilter struct {
	BaseCurrencyCode   *string
	TargetCurrencyCode *string
	Type               *domain.RateType
	ActiveOnly         bool
}

// ExchangeRateReader defines read operations for exchange rate data.
type ExchangeRateReader interface {
	// FindExchangeRateByID retrieves a rate, including its tiers, by id.
	FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// FindApplicableRates retrieves all rates for the directional pair that
	// are active and effective at the given instant, tiers included.
	FindApplicableRates(ctx context.Context, baseCurrencyCode, targetCurrencyCode string, asOf time.Time) ([]domain.ExchangeRate, error)

	// ListExchangeRates retrieves rates matching the filter with pagination,
	// returning the page and the total match count.
	ListExchangeRates(ctx context.Context, filter ExchangeRateFilter, page, pageSize int) ([]domain.ExchangeRate, int, error)
}

// ExchangeRateWriter defines write operations for exchange rate data.
type ExchangeRateWriter interface {
	// SaveExchangeRate persists a new rate together with its tiers.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// UpdateExchangeRate persists mutations to an existing rate's values,
	// window and active flag.
	UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// ReplaceTiers atomically swaps the rate's tier collection.
	ReplaceTiers(ctx context.Context, rateID string, tiers []domain.RateTier) error
}

// ExchangeRateRepositoryFacade combines all exchange rate repository interfaces.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}

// ExchangeRateRepositoryWithTx extends the facade with transaction capabilities.
type ExchangeRateRepositoryWithTx interface {
	ExchangeRateRepositoryFacade
	TransactionManager
}
