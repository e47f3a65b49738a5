package services

import (
	"context"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/dto"
)

// RateLockReaderSvc defines read operations for rate lock data. Reads are
// scoped to the owning client.
type RateLockReaderSvc interface {
	// GetRateLock retrieves a lock owned by the client.
	GetRateLock(ctx context.Context, lockID, clientID string) (*domain.RateLock, error)

	// ListClientRateLocks retrieves the client's locks, newest first.
	ListClientRateLocks(ctx context.Context, clientID string, page, pageSize int) ([]domain.RateLock, int, error)
}

// RateLockWriterSvc defines the lock lifecycle operations.
type RateLockWriterSvc interface {
	// LockRate resolves the current rate for the pair and snapshots it into
	// a new lock, subject to the admission policy.
	LockRate(ctx context.Context, req dto.CreateRateLockRequest) (*domain.RateLock, error)

	// UseLock consumes a lock; locks are one-shot.
	UseLock(ctx context.Context, lockID, clientID string) (*domain.RateLock, error)

	// ExtendLock pushes an active lock's validity window forward.
	ExtendLock(ctx context.Context, lockID, clientID string, additional time.Duration) (*domain.RateLock, error)

	// CancelLock terminates a lock before use; cancelling twice is a no-op.
	CancelLock(ctx context.Context, lockID, clientID, reason string) error
}

// RateLockSvcFacade combines all rate lock service interfaces.
type RateLockSvcFacade interface {
	RateLockReaderSvc
	RateLockWriterSvc
}
