package repositories

import (
	"context"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
)

// RateLockReader defines read operations for rate lock data.
type RateLockReader interface {
	// FindRateLockByID retrieves a lock by id.
	FindRateLockByID(ctx context.Context, lockID string) (*domain.RateLock, error)

	// FindActiveLocksByClient retrieves the client's unused, uncancelled,
	// unexpired locks as of the given instant.
	FindActiveLocksByClient(ctx context.Context, clientID string, now time.Time) ([]domain.RateLock, error)

	// ListRateLocksByClient retrieves all of a client's locks, newest first,
	// with pagination.
	ListRateLocksByClient(ctx context.Context, clientID string, page, pageSize int) ([]domain.RateLock, int, error)
}

// RateLockWriter defines write operations for rate lock data.
type RateLockWriter interface {
	// CreateRateLockAdmitted evaluates the availability policy against the
	// client's existing locks and inserts the new lock, all inside one
	// serialization boundary scoped to the client. Policy failures surface
	// as the policy's admission errors; serialization failures surface as
	// apperrors.ErrConcurrencyConflict.
	CreateRateLockAdmitted(ctx context.Context, lock domain.RateLock, policy domain.LockAvailabilityPolicy, now time.Time) error

	// UpdateRateLock persists state transitions (use, cancel, extend).
	UpdateRateLock(ctx context.Context, lock domain.RateLock) error
}

// RateLockRepositoryFacade combines all rate lock repository interfaces.
type RateLockRepositoryFacade interface {
	RateLockReader
	RateLockWriter
}

// RateLockRepositoryWithTx extends the facade with transaction capabilities.
type RateLockRepositoryWithTx interface {
	RateLockRepositoryFacade
	TransactionManager
}
