package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/models"
	"github.com/kobopay/fx_wallet_app/internal/utils/mapping"
)

const rateLockColumns = `rate_lock_id, client_id, base_currency_code, target_currency_code,
	locked_rate, exchange_rate_id, locked_at, valid_until,
	is_used, used_at, is_cancelled, cancelled_at, cancel_reason, lock_reference,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxRateLockRepository implements the rate lock repository ports using pgxpool.
type PgxRateLockRepository struct {
	BaseRepository
}

func newPgxRateLockRepository(db *pgxpool.Pool) *PgxRateLockRepository {
	return &PgxRateLockRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// CreateRateLockAdmitted evaluates the availability policy and inserts the
// lock inside one transaction. A per-client advisory lock serializes
// concurrent admissions for the same client, so the policy always sees the
// full set of existing locks.
func (r *PgxRateLockRepository) CreateRateLockAdmitted(ctx context.Context, lock domain.RateLock, policy domain.LockAvailabilityPolicy, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	// Serialize per client. The advisory lock is released at commit/rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lock.ClientID); err != nil {
		_ = r.Rollback(ctx, tx)
		return translateConcurrencyError("failed to acquire client admission lock", err)
	}

	existing, err := queryLocks(ctx, tx, `
		SELECT `+rateLockColumns+`
		FROM rate_locks
		WHERE client_id = $1 AND is_used = FALSE AND is_cancelled = FALSE AND valid_until > $2;`,
		lock.ClientID, now)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	if err := policy.CheckAdmission(existing, lock.BaseCurrencyCode, lock.TargetCurrencyCode, now); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	m := mapping.ToModelRateLock(lock)
	_, err = tx.Exec(ctx, `
		INSERT INTO rate_locks (
			rate_lock_id, client_id, base_currency_code, target_currency_code,
			locked_rate, exchange_rate_id, locked_at, valid_until,
			is_used, used_at, is_cancelled, cancelled_at, cancel_reason, lock_reference,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		m.RateLockID, m.ClientID, m.BaseCurrencyCode, m.TargetCurrencyCode,
		m.LockedRate, m.ExchangeRateID, m.LockedAt, m.ValidUntil,
		m.IsUsed, m.UsedAt, m.IsCancelled, m.CancelledAt, m.CancelReason, m.LockReference,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return translateConcurrencyError("failed to insert rate lock", err)
	}

	return r.Commit(ctx, tx)
}

// UpdateRateLock persists state transitions (use, cancel, extend).
func (r *PgxRateLockRepository) UpdateRateLock(ctx context.Context, lock domain.RateLock) error {
	m := mapping.ToModelRateLock(lock)

	tag, err := r.Pool.Exec(ctx, `
		UPDATE rate_locks
		SET valid_until = $1, is_used = $2, used_at = $3,
			is_cancelled = $4, cancelled_at = $5, cancel_reason = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE rate_lock_id = $9`,
		m.ValidUntil, m.IsUsed, m.UsedAt,
		m.IsCancelled, m.CancelledAt, m.CancelReason,
		m.LastUpdatedAt, m.LastUpdatedBy, m.RateLockID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update rate lock", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("rate lock with ID " + lock.RateLockID + " not found")
	}
	return nil
}

// FindRateLockByID retrieves a lock by id.
func (r *PgxRateLockRepository) FindRateLockByID(ctx context.Context, lockID string) (*domain.RateLock, error) {
	query := `SELECT ` + rateLockColumns + ` FROM rate_locks WHERE rate_lock_id = $1;`

	m, err := scanRateLock(r.Pool.QueryRow(ctx, query, lockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("rate lock with ID " + lockID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to get rate lock by ID", err)
	}

	domainLock := mapping.ToDomainRateLock(m)
	return &domainLock, nil
}

// FindActiveLocksByClient retrieves the client's unused, uncancelled,
// unexpired locks as of the given instant.
func (r *PgxRateLockRepository) FindActiveLocksByClient(ctx context.Context, clientID string, now time.Time) ([]domain.RateLock, error) {
	return queryLocks(ctx, r.Pool, `
		SELECT `+rateLockColumns+`
		FROM rate_locks
		WHERE client_id = $1 AND is_used = FALSE AND is_cancelled = FALSE AND valid_until > $2
		ORDER BY locked_at DESC;`,
		clientID, now)
}

// ListRateLocksByClient retrieves all of a client's locks, newest first.
func (r *PgxRateLockRepository) ListRateLocksByClient(ctx context.Context, clientID string, page, pageSize int) ([]domain.RateLock, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM rate_locks WHERE client_id = $1`, clientID).Scan(&total)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count rate locks", err)
	}

	locks, err := queryLocks(ctx, r.Pool, `
		SELECT `+rateLockColumns+`
		FROM rate_locks
		WHERE client_id = $1
		ORDER BY locked_at DESC, rate_lock_id DESC
		LIMIT $2 OFFSET $3;`,
		clientID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return locks, total, nil
}

// querier abstracts pool and transaction for read helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLocks(ctx context.Context, q querier, query string, args ...any) ([]domain.RateLock, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query rate locks", err)
	}
	defer rows.Close()

	var modelLocks []models.RateLock
	for rows.Next() {
		m, err := scanRateLock(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan rate lock", err)
		}
		modelLocks = append(modelLocks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read rate locks", err)
	}
	return mapping.ToDomainRateLockSlice(modelLocks), nil
}

// scanRateLock scans one row in rateLockColumns order.
func scanRateLock(row pgx.Row) (models.RateLock, error) {
	var m models.RateLock
	err := row.Scan(
		&m.RateLockID, &m.ClientID, &m.BaseCurrencyCode, &m.TargetCurrencyCode,
		&m.LockedRate, &m.ExchangeRateID, &m.LockedAt, &m.ValidUntil,
		&m.IsUsed, &m.UsedAt, &m.IsCancelled, &m.CancelledAt, &m.CancelReason, &m.LockReference,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// translateConcurrencyError maps serialization and deadlock failures to
// apperrors.ErrConcurrencyConflict so callers can retry.
func translateConcurrencyError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", apperrors.ErrConcurrencyConflict, msg)
		}
	}
	return apperrors.NewAppError(500, msg, err)
}
