package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeContext carries everything a single multi-currency computation
// needs to know about its surroundings. It is immutable per computation
// and supplied by the caller.
type ExchangeContext struct {
	CompanyCurrency     Currency
	DocumentCurrency    Currency
	CounterpartCurrency Currency
	CompanyID           string
	AsOfDate            time.Time
}

// SameCurrency reports whether the document is denominated in the
// company currency, in which case no conversion takes place.
func (c ExchangeContext) SameCurrency() bool {
	return c.DocumentCurrency.Equal(c.CompanyCurrency)
}

// RateOverride is a user-supplied fixed exchange rate that supersedes the
// market rate lookup. The rate is a direct multiplier from document
// currency to company currency, not a market quote.
type RateOverride struct {
	Apply bool            `json:"apply"`
	Rate  decimal.Decimal `json:"rate"`
}

// Effective reports whether the override actually takes effect. An enabled
// override with a zero rate is treated as "no effective override" and the
// market rate applies instead.
func (o RateOverride) Effective() bool {
	return o.Apply && !o.Rate.IsZero()
}
