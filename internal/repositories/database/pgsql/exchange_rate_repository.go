package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
	"github.com/kobopay/fx_wallet_app/internal/models"
	"github.com/kobopay/fx_wallet_app/internal/utils/mapping"
)

const exchangeRateColumns = `exchange_rate_id, base_currency_code, target_currency_code,
	base_currency_value, target_currency_value, margin, rate_type, client_id, client_group_id,
	effective_from, effective_to, is_active, source,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxExchangeRateRepository implements the exchange rate repository ports using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SaveExchangeRate inserts a new rate together with its tiers in one transaction.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	// Normalize currency codes to uppercase
	rate.BaseCurrencyCode = strings.ToUpper(rate.BaseCurrencyCode)
	rate.TargetCurrencyCode = strings.ToUpper(rate.TargetCurrencyCode)

	if rate.BaseCurrencyCode == rate.TargetCurrencyCode {
		return apperrors.NewValidationError("base and target currencies cannot be the same")
	}

	modelRate := mapping.ToModelExchangeRate(rate)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO exchange_rates (
			exchange_rate_id, base_currency_code, target_currency_code,
			base_currency_value, target_currency_value, margin, rate_type, client_id, client_group_id,
			effective_from, effective_to, is_active, source,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		modelRate.ExchangeRateID, modelRate.BaseCurrencyCode, modelRate.TargetCurrencyCode,
		modelRate.BaseCurrencyValue, modelRate.TargetCurrencyValue, modelRate.Margin,
		modelRate.RateType, modelRate.ClientID, modelRate.ClientGroupID,
		modelRate.EffectiveFrom, modelRate.EffectiveTo, modelRate.IsActive, modelRate.Source,
		modelRate.CreatedAt, modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}

	if err := insertTiers(ctx, tx, rate.ExchangeRateID, rate.Tiers); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateExchangeRate persists mutations to an existing rate's values, window
// and active flag. Tiers are managed through ReplaceTiers.
func (r *PgxExchangeRateRepository) UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	modelRate := mapping.ToModelExchangeRate(rate)

	tag, err := r.Pool.Exec(ctx, `
		UPDATE exchange_rates
		SET base_currency_value = $1, target_currency_value = $2, margin = $3,
			effective_from = $4, effective_to = $5, is_active = $6, source = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE exchange_rate_id = $10`,
		modelRate.BaseCurrencyValue, modelRate.TargetCurrencyValue, modelRate.Margin,
		modelRate.EffectiveFrom, modelRate.EffectiveTo, modelRate.IsActive, modelRate.Source,
		modelRate.LastUpdatedAt, modelRate.LastUpdatedBy, modelRate.ExchangeRateID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update exchange rate", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("exchange rate with ID " + rate.ExchangeRateID + " not found")
	}
	return nil
}

// FindExchangeRateByID retrieves a rate, including its tiers, by id.
func (r *PgxExchangeRateRepository) FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates WHERE exchange_rate_id = $1;`

	row := r.Pool.QueryRow(ctx, query, rateID)
	modelRate, err := scanExchangeRate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate with ID " + rateID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to get exchange rate by ID", err)
	}

	domainRate := mapping.ToDomainExchangeRate(modelRate)
	tiersByRate, err := r.loadTiers(ctx, []string{rateID})
	if err != nil {
		return nil, err
	}
	domainRate.Tiers = tiersByRate[rateID]
	return &domainRate, nil
}

// FindApplicableRates retrieves all rates for the directional pair that are
// active and effective at the given instant, tiers included.
func (r *PgxExchangeRateRepository) FindApplicableRates(ctx context.Context, baseCurrencyCode, targetCurrencyCode string, asOf time.Time) ([]domain.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2
			AND is_active = TRUE
			AND effective_from <= $3
			AND (effective_to IS NULL OR effective_to >= $3)
		ORDER BY effective_from DESC;`

	rows, err := r.Pool.Query(ctx, query,
		strings.ToUpper(baseCurrencyCode), strings.ToUpper(targetCurrencyCode), asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find applicable rates", err)
	}
	defer rows.Close()

	var modelRates []models.ExchangeRate
	for rows.Next() {
		modelRate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		modelRates = append(modelRates, modelRate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read applicable rates", err)
	}

	return r.attachTiers(ctx, modelRates)
}

// ListExchangeRates retrieves rates matching the filter with pagination.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, filter portsrepo.ExchangeRateFilter, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var conditions []string
	var args []interface{}
	argPos := 1

	if filter.BaseCurrencyCode != nil {
		conditions = append(conditions, fmt.Sprintf("base_currency_code = $%d", argPos))
		args = append(args, strings.ToUpper(*filter.BaseCurrencyCode))
		argPos++
	}
	if filter.TargetCurrencyCode != nil {
		conditions = append(conditions, fmt.Sprintf("target_currency_code = $%d", argPos))
		args = append(args, strings.ToUpper(*filter.TargetCurrencyCode))
		argPos++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("rate_type = $%d", argPos))
		args = append(args, string(*filter.Type))
		argPos++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM exchange_rates` + whereClause
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count exchange rates", err)
	}

	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates` + whereClause +
		fmt.Sprintf(" ORDER BY effective_from DESC, exchange_rate_id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	var modelRates []models.ExchangeRate
	for rows.Next() {
		modelRate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		modelRates = append(modelRates, modelRate)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to read exchange rates", err)
	}

	domainRates, err := r.attachTiers(ctx, modelRates)
	if err != nil {
		return nil, 0, err
	}
	return domainRates, total, nil
}

// ReplaceTiers atomically swaps the rate's tier collection.
func (r *PgxExchangeRateRepository) ReplaceTiers(ctx context.Context, rateID string, tiers []domain.RateTier) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rate_tiers WHERE exchange_rate_id = $1`, rateID); err != nil {
		_ = r.Rollback(ctx, tx)
		return apperrors.NewAppError(500, "failed to delete existing rate tiers", err)
	}

	if err := insertTiers(ctx, tx, rateID, tiers); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	return r.Commit(ctx, tx)
}

// attachTiers converts model rates to domain rates and loads their tiers in
// one round trip.
func (r *PgxExchangeRateRepository) attachTiers(ctx context.Context, modelRates []models.ExchangeRate) ([]domain.ExchangeRate, error) {
	if len(modelRates) == 0 {
		return []domain.ExchangeRate{}, nil
	}

	rateIDs := make([]string, len(modelRates))
	for i, m := range modelRates {
		rateIDs[i] = m.ExchangeRateID
	}

	tiersByRate, err := r.loadTiers(ctx, rateIDs)
	if err != nil {
		return nil, err
	}

	domainRates := make([]domain.ExchangeRate, len(modelRates))
	for i, m := range modelRates {
		domainRates[i] = mapping.ToDomainExchangeRate(m)
		domainRates[i].Tiers = tiersByRate[m.ExchangeRateID]
	}
	return domainRates, nil
}

// loadTiers fetches the tiers for the given rates, keyed by rate id and
// ordered by min_amount.
func (r *PgxExchangeRateRepository) loadTiers(ctx context.Context, rateIDs []string) (map[string][]domain.RateTier, error) {
	query := `
		SELECT rate_tier_id, exchange_rate_id, min_amount, max_amount, rate, margin, created_at, created_by
		FROM rate_tiers
		WHERE exchange_rate_id = ANY($1)
		ORDER BY exchange_rate_id, min_amount ASC;`

	rows, err := r.Pool.Query(ctx, query, rateIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load rate tiers", err)
	}
	defer rows.Close()

	tiersByRate := make(map[string][]domain.RateTier)
	for rows.Next() {
		var m models.RateTier
		err := rows.Scan(
			&m.RateTierID, &m.ExchangeRateID, &m.MinAmount, &m.MaxAmount,
			&m.Rate, &m.Margin, &m.CreatedAt, &m.CreatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan rate tier", err)
		}
		tiersByRate[m.ExchangeRateID] = append(tiersByRate[m.ExchangeRateID], mapping.ToDomainRateTier(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read rate tiers", err)
	}
	return tiersByRate, nil
}

// insertTiers writes the tier rows for a rate inside the caller's transaction.
func insertTiers(ctx context.Context, tx pgx.Tx, rateID string, tiers []domain.RateTier) error {
	for _, tier := range tiers {
		m := mapping.ToModelRateTier(rateID, tier)
		_, err := tx.Exec(ctx, `
			INSERT INTO rate_tiers (
				rate_tier_id, exchange_rate_id, min_amount, max_amount, rate, margin, created_at, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.RateTierID, m.ExchangeRateID, m.MinAmount, m.MaxAmount,
			m.Rate, m.Margin, m.CreatedAt, m.CreatedBy,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert rate tier", err)
		}
	}
	return nil
}

// scanExchangeRate scans one row in exchangeRateColumns order.
func scanExchangeRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID, &m.BaseCurrencyCode, &m.TargetCurrencyCode,
		&m.BaseCurrencyValue, &m.TargetCurrencyValue, &m.Margin,
		&m.RateType, &m.ClientID, &m.ClientGroupID,
		&m.EffectiveFrom, &m.EffectiveTo, &m.IsActive, &m.Source,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}
