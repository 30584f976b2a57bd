package services

import (
	"context"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// RateOracle is the market-rate conversion interface consumed by the FX
// core. It is assumed deterministic for fixed inputs; the core never
// queries historical rate tables directly.
type RateOracle interface {
	// ConversionRate returns the multiplier turning one unit of the from
	// currency into the to currency, effective at the given date.
	ConversionRate(ctx context.Context, fromCode, toCode, companyID string, date time.Time) (decimal.Decimal, error)

	// Convert converts an amount between two currencies at the given date.
	// The result is not rounded; callers round per target currency.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode, companyID string, date time.Time) (decimal.Decimal, error)
}

// ExchangeRateSvcFacade manages stored market rates and exposes them as
// the rate oracle.
type ExchangeRateSvcFacade interface {
	RateOracle

	// CreateExchangeRate stores a new market rate record.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)

	// GetExchangeRate retrieves the latest stored rate for a pair.
	GetExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)
}
