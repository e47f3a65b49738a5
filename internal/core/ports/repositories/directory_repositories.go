package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ClientDirectory validates the targets of Individual and Group rates.
// The wallet's identity subsystem owns the underlying data.
type ClientDirectory interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
	ClientIsActive(ctx context.Context, clientID string) (bool, error)
	ClientGroupExists(ctx context.Context, clientGroupID string) (bool, error)
	ClientGroupIsActive(ctx context.Context, clientGroupID string) (bool, error)
}

// MinimumAmountConfig exposes the externally configured minimum transaction
// amount per currency pair, consulted by tier management to validate the
// highest tier boundary. A nil amount means no minimum is configured.
type MinimumAmountConfig interface {
	GetApplicableMinimum(ctx context.Context, baseCurrencyCode, targetCurrencyCode string, asOf time.Time) (*decimal.Decimal, error)
}
