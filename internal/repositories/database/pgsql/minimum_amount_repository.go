package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PgxMinimumAmountRepository reads the per-pair minimum transaction amount
// configuration consulted during tier boundary validation.
type PgxMinimumAmountRepository struct {
	BaseRepository
}

func newPgxMinimumAmountRepository(db *pgxpool.Pool) *PgxMinimumAmountRepository {
	return &PgxMinimumAmountRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetApplicableMinimum returns the minimum configured for the pair at the
// given instant, or nil when none is configured.
func (r *PgxMinimumAmountRepository) GetApplicableMinimum(ctx context.Context, baseCurrencyCode, targetCurrencyCode string, asOf time.Time) (*decimal.Decimal, error) {
	query := `
		SELECT minimum_amount
		FROM minimum_transaction_amounts
		WHERE base_currency_code = $1 AND target_currency_code = $2
			AND effective_from <= $3
			AND (effective_to IS NULL OR effective_to >= $3)
		ORDER BY effective_from DESC
		LIMIT 1;`

	var minimum decimal.Decimal
	err := r.Pool.QueryRow(ctx, query,
		strings.ToUpper(baseCurrencyCode), strings.ToUpper(targetCurrencyCode), asOf,
	).Scan(&minimum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to get minimum transaction amount", err)
	}
	return &minimum, nil
}
