package repositories

import (
	"context"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
)

// CurrencyRepository defines persistence operations for currency master data.
type CurrencyRepository interface {
	// SaveCurrency persists a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// FindCurrencyByCode retrieves a currency by its 3-letter code.
	// Returns apperrors.ErrNotFound if missing.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all known currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
