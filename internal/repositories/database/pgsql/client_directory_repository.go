package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kobopay/fx_wallet_app/internal/apperrors"
)

// PgxClientDirectoryRepository answers client and group existence checks
// against the wallet's identity tables.
type PgxClientDirectoryRepository struct {
	BaseRepository
}

func newPgxClientDirectoryRepository(db *pgxpool.Pool) *PgxClientDirectoryRepository {
	return &PgxClientDirectoryRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// ClientExists reports whether the client is registered.
func (r *PgxClientDirectoryRepository) ClientExists(ctx context.Context, clientID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE client_id = $1)`, clientID)
}

// ClientIsActive reports whether the client is registered and active.
func (r *PgxClientDirectoryRepository) ClientIsActive(ctx context.Context, clientID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE client_id = $1 AND is_active = TRUE)`, clientID)
}

// ClientGroupExists reports whether the client group is registered.
func (r *PgxClientDirectoryRepository) ClientGroupExists(ctx context.Context, clientGroupID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM client_groups WHERE client_group_id = $1)`, clientGroupID)
}

// ClientGroupIsActive reports whether the client group is registered and active.
func (r *PgxClientDirectoryRepository) ClientGroupIsActive(ctx context.Context, clientGroupID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM client_groups WHERE client_group_id = $1 AND is_active = TRUE)`, clientGroupID)
}

func (r *PgxClientDirectoryRepository) exists(ctx context.Context, query, id string) (bool, error) {
	var found bool
	if err := r.Pool.QueryRow(ctx, query, id).Scan(&found); err != nil {
		return false, apperrors.NewAppError(500, "failed to check directory entry", err)
	}
	return found, nil
}
