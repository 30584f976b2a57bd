package domain

import "github.com/shopspring/decimal"

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int    `json:"precision"`    // Number of decimal places (e.g., 2 for USD, 0 for JPY)
	AuditFields
}

// Round rounds an amount to the currency's precision.
// Rounding is idempotent: Round(Round(x)) == Round(x).
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(int32(c.Precision))
}

// IsZero reports whether an amount rounds to zero at the currency's precision.
func (c Currency) IsZero(amount decimal.Decimal) bool {
	return c.Round(amount).IsZero()
}

// Equal compares currencies by their code.
func (c Currency) Equal(other Currency) bool {
	return c.CurrencyCode == other.CurrencyCode
}
