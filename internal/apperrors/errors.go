package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDomainInvariant indicates an entity construction or mutation that would
// violate a domain invariant (non-positive rate values, margin out of range,
// bad date ordering, missing client/group id).
var ErrDomainInvariant = errors.New("domain invariant violation")

// Conversion and resolution errors.
var (
	// ErrInvalidAmount indicates a negative amount was supplied to a conversion.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnsupportedCurrencyPair indicates a conversion or description was
	// requested for a pair the rate does not cover.
	ErrUnsupportedCurrencyPair = errors.New("unsupported currency pair")

	// ErrNoApplicableRate indicates no rate is usable for the pair at the
	// requested instant. Callers must surface this as "no quote available".
	ErrNoApplicableRate = errors.New("no applicable exchange rate")

	// ErrNoApplicableTier indicates the requested amount falls outside every
	// tier bracket of a tiered rate.
	ErrNoApplicableTier = errors.New("no applicable rate tier")
)

// Tier management errors.
var (
	// ErrInvalidRateType indicates a tier operation on a non-General rate.
	ErrInvalidRateType = errors.New("invalid rate type for operation")

	// ErrTierOverlap indicates overlapping or non-contiguous tier brackets.
	ErrTierOverlap = errors.New("rate tiers overlap or are not contiguous")

	// ErrTierBoundaryMismatch indicates the highest tier boundary does not
	// match the configured minimum transaction amount for the pair.
	ErrTierBoundaryMismatch = errors.New("tier boundary does not match configured minimum")
)

// Rate lock admission errors.
var (
	// ErrLockingDisabled indicates rate locking is switched off by configuration.
	ErrLockingDisabled = errors.New("rate locking is disabled")

	// ErrLockLimitExceeded indicates the client already holds the maximum
	// number of active rate locks.
	ErrLockLimitExceeded = errors.New("active rate lock limit exceeded")

	// ErrDuplicateLockForPair indicates the client already holds an active
	// lock for the same currency pair.
	ErrDuplicateLockForPair = errors.New("active rate lock already exists for currency pair")

	// ErrRateWindowTooShort indicates the source rate expires before the
	// requested lock window would end.
	ErrRateWindowTooShort = errors.New("rate validity window too short for lock duration")
)

// Rate lock state machine errors.
var (
	// ErrLockNotExtendable indicates an extension attempt on a used,
	// cancelled or expired lock.
	ErrLockNotExtendable = errors.New("rate lock is not extendable")

	// ErrAlreadyUsed indicates a second use attempt on a consumed lock.
	ErrAlreadyUsed = errors.New("rate lock already used")

	// ErrLockExpired indicates a use attempt on an expired lock.
	ErrLockExpired = errors.New("rate lock expired")
)

// ErrConcurrencyConflict indicates a serialization conflict during lock
// admission. It is retryable, unlike the business-rule admission errors.
var ErrConcurrencyConflict = errors.New("concurrency conflict, retry")
