package services

import (
	"context"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// RateSelector chooses between the manual override rate and the market
// rate for a document. Pure selection: no side effects, at most one oracle
// lookup per call.
type RateSelector struct {
	oracle portssvc.RateOracle
}

// NewRateSelector creates a new RateSelector.
func NewRateSelector(oracle portssvc.RateOracle) *RateSelector {
	return &RateSelector{oracle: oracle}
}

// SelectRate returns the document-to-company conversion rate. An effective
// override wins; otherwise the market oracle is queried for the document
// date. The manual rate is a direct multiplier, not a market quote.
func (s *RateSelector) SelectRate(ctx context.Context, exCtx domain.ExchangeContext, override domain.RateOverride) (decimal.Decimal, error) {
	if override.Effective() {
		return override.Rate, nil
	}
	return s.oracle.ConversionRate(ctx,
		exCtx.DocumentCurrency.CurrencyCode,
		exCtx.CompanyCurrency.CurrencyCode,
		exCtx.CompanyID,
		exCtx.AsOfDate,
	)
}

// SelectReverseRate returns the company-to-document conversion rate used
// by reconciliation-side lookups. The market path queries the oracle in
// the reverse direction; an effective override is applied as-is, the same
// value for both directions.
func (s *RateSelector) SelectReverseRate(ctx context.Context, exCtx domain.ExchangeContext, override domain.RateOverride) (decimal.Decimal, error) {
	if override.Effective() {
		return override.Rate, nil
	}
	return s.oracle.ConversionRate(ctx,
		exCtx.CompanyCurrency.CurrencyCode,
		exCtx.DocumentCurrency.CurrencyCode,
		exCtx.CompanyID,
		exCtx.AsOfDate,
	)
}
