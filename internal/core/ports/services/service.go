package services

// ServiceContainer holds instances of all the application services. It is
// the entry point for handlers to reach service functionality.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	RateResolver RateResolverSvc
	RateLock     RateLockSvcFacade
}
