package repositories

import (
	"context"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
)

// ExchangeRateRepository defines persistence operations for stored market rates.
type ExchangeRateRepository interface {
	// SaveExchangeRate persists a new exchange rate record.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// FindExchangeRate retrieves the latest stored rate for the pair.
	// Returns apperrors.ErrNotFound if no rate exists.
	FindExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)

	// FindRateAsOf retrieves the rate for the pair effective at the given
	// date (the most recent record with DateEffective <= asOf).
	// Returns apperrors.ErrNotFound if no rate was effective yet.
	FindRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error)
}
