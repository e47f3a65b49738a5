package services

import (
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/kobopay/fx_wallet_app/internal/core/ports/services"
	"github.com/kobopay/fx_wallet_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. The resolver is built first since lock creation
// quotes through it.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, clock ports.Clock) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.RateResolver = NewRateResolverService(repos.ExchangeRateRepo, clock)

	container.ExchangeRate = NewExchangeRateService(
		repos.ExchangeRateRepo,
		repos.ClientDirectory,
		repos.MinimumAmounts,
		clock,
	)

	container.RateLock = NewRateLockService(
		repos.RateLockRepo,
		container.RateResolver,
		RateLockSettings{
			Enabled:                 cfg.RateLockingEnabled,
			MaxActiveLocksPerClient: cfg.MaxActiveLocksPerClient,
			MaxLockDuration:         cfg.MaxLockDuration,
			AllowExtension:          cfg.AllowLockExtension,
			MaxExtensionDuration:    cfg.MaxLockExtensionDuration,
			ExpiryWarningThreshold:  cfg.LockExpiryWarningThreshold,
		},
		clock,
	)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)
	_ portssvc.RateResolverSvc       = (*RateResolverService)(nil)
	_ portssvc.RateLockSvcFacade     = (*RateLockService)(nil)
)
