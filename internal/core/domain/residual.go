package domain

import "github.com/shopspring/decimal"

// ResidualQuery asks how much of a line remains unsettled, per currency,
// against an opposite line denominated in CounterpartCurrency.
type ResidualQuery struct {
	Line                MoveLine
	CounterpartCurrency Currency
	Shadowed            ShadowedValues // Optional preview overrides, may be nil
	OtherLine           *MoveLine      // Optional opposite line
}

// ResidualAmount is the outstanding amount in one currency together with
// the rate that applies to it, relative to the company currency.
type ResidualAmount struct {
	Residual decimal.Decimal `json:"residual"`
	Rate     decimal.Decimal `json:"rate"`
}

// ResidualResult maps currency code -> outstanding amount and rate.
// A currency is present only if its residual is non-zero; there is at most
// one entry per currency.
type ResidualResult map[string]ResidualAmount
