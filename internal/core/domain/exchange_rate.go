package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the market conversion rate between two currencies
// effective from a specific date. These records back the rate oracle.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (e.g., UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
