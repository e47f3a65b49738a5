package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	rateLockRepo := newPgxRateLockRepository(dbPool)
	clientDirectoryRepo := newPgxClientDirectoryRepository(dbPool)
	minimumAmountRepo := newPgxMinimumAmountRepository(dbPool)

	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: exchangeRateRepo,
		RateLockRepo:     rateLockRepo,
		ClientDirectory:  clientDirectoryRepo,
		MinimumAmounts:   minimumAmountRepo,
	}
}

// Compile-time interface checks.
var (
	_ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)
	_ portsrepo.RateLockRepositoryFacade     = (*PgxRateLockRepository)(nil)
	_ portsrepo.ClientDirectory              = (*PgxClientDirectoryRepository)(nil)
	_ portsrepo.MinimumAmountConfig          = (*PgxMinimumAmountRepository)(nil)
)
