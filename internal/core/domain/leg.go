package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LegRole identifies the role of one line within a balanced payment document.
type LegRole string

const (
	LegLiquidity   LegRole = "LIQUIDITY"
	LegCounterpart LegRole = "COUNTERPART"
	LegWriteOff    LegRole = "WRITE_OFF"
)

// LineLeg is one line of a balanced accounting document. Debit and credit
// are never both non-zero on one leg and never negative.
type LineLeg struct {
	Role           LegRole         `json:"role"`
	Name           string          `json:"name"`
	DateMaturity   time.Time       `json:"dateMaturity"`
	AmountCurrency decimal.Decimal `json:"amountCurrency"` // Signed amount in the document currency
	CurrencyCode   string          `json:"currencyCode"`
	Balance        decimal.Decimal `json:"balance"` // Signed amount in the company currency
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	PartnerID      string          `json:"partnerID"`
	AccountID      string          `json:"accountID"`
}

// SetBalance assigns the leg's company-currency balance and derives the
// debit/credit split: debit = balance if positive, credit = -balance if
// negative.
func (l *LineLeg) SetBalance(balance decimal.Decimal) {
	l.Balance = balance
	if balance.IsPositive() {
		l.Debit = balance
		l.Credit = decimal.Zero
	} else if balance.IsNegative() {
		l.Debit = decimal.Zero
		l.Credit = balance.Neg()
	} else {
		l.Debit = decimal.Zero
		l.Credit = decimal.Zero
	}
}

// SumBalances adds up the company-currency balances of a set of legs.
// For a correctly balanced document the sum rounds to zero in the
// company currency.
func SumBalances(legs []LineLeg) decimal.Decimal {
	sum := decimal.Zero
	for _, leg := range legs {
		sum = sum.Add(leg.Balance)
	}
	return sum
}
