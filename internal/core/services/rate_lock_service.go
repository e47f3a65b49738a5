package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/kobopay/fx_wallet_app/internal/core/ports/services"
	"github.com/kobopay/fx_wallet_app/internal/dto"
	"github.com/google/uuid"
)

// RateLockSettings bounds the lock lifecycle. Loaded from configuration.
type RateLockSettings struct {
	Enabled                 bool
	MaxActiveLocksPerClient int
	MaxLockDuration         time.Duration
	AllowExtension          bool
	MaxExtensionDuration    time.Duration
	ExpiryWarningThreshold  time.Duration
}

// RateLockService provides the rate lock lifecycle: admission-controlled
// creation, one-shot consumption, extension and cancellation.
type RateLockService struct {
	BaseService
	lockRepo portsrepo.RateLockRepositoryFacade
	resolver portssvc.RateResolverSvc
	settings RateLockSettings
	clock    ports.Clock
}

// NewRateLockService creates a new RateLockService.
func NewRateLockService(lockRepo portsrepo.RateLockRepositoryFacade, resolver portssvc.RateResolverSvc, settings RateLockSettings, clock ports.Clock) *RateLockService {
	return &RateLockService{
		lockRepo: lockRepo,
		resolver: resolver,
		settings: settings,
		clock:    clock,
	}
}

// LockRate resolves the current rate for the pair and snapshots it into a
// new lock. Admission (per-client cap and per-pair uniqueness) is evaluated
// by the repository inside a per-client serialization boundary, so two
// concurrent requests cannot both pass the check.
func (s *RateLockService) LockRate(ctx context.Context, req dto.CreateRateLockRequest) (*domain.RateLock, error) {
	if !s.settings.Enabled {
		return nil, apperrors.ErrLockingDisabled
	}

	duration := time.Duration(req.LockDurationSeconds) * time.Second
	if duration <= 0 {
		return nil, fmt.Errorf("%w: lock duration must be positive", apperrors.ErrValidation)
	}
	if duration > s.settings.MaxLockDuration {
		return nil, fmt.Errorf("%w: lock duration %s exceeds maximum %s", apperrors.ErrValidation, duration, s.settings.MaxLockDuration)
	}

	now := s.clock.Now()
	resolution, err := s.resolver.ResolveRate(ctx, dto.ResolveRateRequest{
		ClientID:           req.ClientID,
		ClientGroupID:      req.ClientGroupID,
		BaseCurrencyCode:   req.BaseCurrencyCode,
		TargetCurrencyCode: req.TargetCurrencyCode,
		AsOf:               &now,
	})
	if err != nil {
		return nil, err
	}

	// The snapshotted rate must stay valid through the whole lock window.
	validUntil := now.Add(duration)
	if resolution.Rate.EffectiveTo != nil && validUntil.After(*resolution.Rate.EffectiveTo) {
		return nil, fmt.Errorf("%w: rate valid until %s, lock would end %s",
			apperrors.ErrRateWindowTooShort,
			resolution.Rate.EffectiveTo.Format(time.RFC3339),
			validUntil.Format(time.RFC3339))
	}

	lock, err := domain.NewRateLock(req.ClientID, *resolution, duration, req.LockReference, req.ClientID, now)
	if err != nil {
		return nil, err
	}
	lock.RateLockID = uuid.NewString()

	policy := domain.LockAvailabilityPolicy{MaxActiveLocksPerClient: s.settings.MaxActiveLocksPerClient}
	if err := s.lockRepo.CreateRateLockAdmitted(ctx, *lock, policy, now); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "rate lock created",
		"lock_id", lock.RateLockID,
		"client_id", lock.ClientID,
		"pair", lock.BaseCurrencyCode+"/"+lock.TargetCurrencyCode,
		"locked_rate", lock.LockedRate.String(),
	)
	return lock, nil
}

// UseLock consumes a lock on settlement. Locks are one-shot.
func (s *RateLockService) UseLock(ctx context.Context, lockID, clientID string) (*domain.RateLock, error) {
	lock, err := s.findOwnedLock(ctx, lockID, clientID)
	if err != nil {
		return nil, err
	}
	if err := lock.MarkUsed(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.lockRepo.UpdateRateLock(ctx, *lock); err != nil {
		return nil, fmt.Errorf("failed to persist lock use: %w", err)
	}
	return lock, nil
}

// ExtendLock pushes an active lock's validity window forward, bounded by the
// configured maximum extension.
func (s *RateLockService) ExtendLock(ctx context.Context, lockID, clientID string, additional time.Duration) (*domain.RateLock, error) {
	if !s.settings.AllowExtension {
		return nil, fmt.Errorf("%w: lock extension is disabled", apperrors.ErrLockNotExtendable)
	}
	if additional <= 0 {
		return nil, fmt.Errorf("%w: extension duration must be positive", apperrors.ErrValidation)
	}
	if additional > s.settings.MaxExtensionDuration {
		return nil, fmt.Errorf("%w: extension %s exceeds maximum %s", apperrors.ErrValidation, additional, s.settings.MaxExtensionDuration)
	}
	lock, err := s.findOwnedLock(ctx, lockID, clientID)
	if err != nil {
		return nil, err
	}
	if err := lock.Extend(additional, clientID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.lockRepo.UpdateRateLock(ctx, *lock); err != nil {
		return nil, fmt.Errorf("failed to persist lock extension: %w", err)
	}
	return lock, nil
}

// CancelLock terminates a lock before use. Cancelling twice is a no-op;
// expired locks may still be cancelled.
func (s *RateLockService) CancelLock(ctx context.Context, lockID, clientID, reason string) error {
	lock, err := s.findOwnedLock(ctx, lockID, clientID)
	if err != nil {
		return err
	}
	if err := lock.Cancel(reason, s.clock.Now()); err != nil {
		return err
	}
	if err := s.lockRepo.UpdateRateLock(ctx, *lock); err != nil {
		return fmt.Errorf("failed to persist lock cancellation: %w", err)
	}
	return nil
}

// GetRateLock retrieves a lock owned by the client.
func (s *RateLockService) GetRateLock(ctx context.Context, lockID, clientID string) (*domain.RateLock, error) {
	return s.findOwnedLock(ctx, lockID, clientID)
}

// ListClientRateLocks retrieves the client's locks, newest first.
func (s *RateLockService) ListClientRateLocks(ctx context.Context, clientID string, page, pageSize int) ([]domain.RateLock, int, error) {
	locks, total, err := s.lockRepo.ListRateLocksByClient(ctx, clientID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rate locks in service: %w", err)
	}
	return locks, total, nil
}

// findOwnedLock loads a lock and verifies ownership. A lock belonging to a
// different client is reported as not found rather than forbidden.
func (s *RateLockService) findOwnedLock(ctx context.Context, lockID, clientID string) (*domain.RateLock, error) {
	lock, err := s.lockRepo.FindRateLockByID(ctx, lockID)
	if err != nil {
		return nil, err
	}
	if lock.ClientID != clientID {
		return nil, fmt.Errorf("%w: rate lock '%s'", apperrors.ErrNotFound, lockID)
	}
	return lock, nil
}

// Settings exposes the service's lock configuration for response shaping.
func (s *RateLockService) Settings() RateLockSettings {
	return s.settings
}
