package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveLine is a snapshot of a posted journal item as the reconciliation
// engine sees it. It carries the denormalized move-level flags the residual
// computation needs so that a single read suffices.
type MoveLine struct {
	MoveLineID   string          `json:"moveLineID"`
	MoveID       string          `json:"moveID"`
	Name         string          `json:"name"`
	AccountID    string          `json:"accountID"`
	AccountType  AccountType     `json:"accountType"`
	PartnerID    string          `json:"partnerID"`
	Date         time.Time       `json:"date"`
	DateMaturity time.Time       `json:"dateMaturity"`
	CurrencyCode string          `json:"currencyCode"`

	AmountCurrency         decimal.Decimal `json:"amountCurrency"` // Signed, in the line currency
	Balance                decimal.Decimal `json:"balance"`        // Signed, in the company currency
	Debit                  decimal.Decimal `json:"debit"`
	Credit                 decimal.Decimal `json:"credit"`
	AmountResidual         decimal.Decimal `json:"amountResidual"`         // Unsettled remainder, company currency
	AmountResidualCurrency decimal.Decimal `json:"amountResidualCurrency"` // Unsettled remainder, line currency

	// Move-level context.
	IsPaymentLine bool       `json:"isPaymentLine"` // Belongs to a payment or bank statement line
	IsInvoice     bool       `json:"isInvoice"`
	InvoiceDate   *time.Time `json:"invoiceDate,omitempty"`

	ApplyManualCurrencyExchange bool            `json:"applyManualCurrencyExchange"`
	ManualCurrencyExchangeRate  decimal.Decimal `json:"manualCurrencyExchangeRate"`
}

// Override bundles the line's move-level manual-rate fields.
func (l MoveLine) Override() RateOverride {
	return RateOverride{
		Apply: l.ApplyManualCurrencyExchange,
		Rate:  l.ManualCurrencyExchangeRate,
	}
}

// FieldOverrides holds hypothetical replacement values for a single move
// line. Nil fields fall back to the stored value. Callers use it to preview
// a reconciliation outcome without mutating stored state.
type FieldOverrides struct {
	Balance                *decimal.Decimal `json:"balance,omitempty"`
	AmountCurrency         *decimal.Decimal `json:"amountCurrency,omitempty"`
	AmountResidual         *decimal.Decimal `json:"amountResidual,omitempty"`
	AmountResidualCurrency *decimal.Decimal `json:"amountResidualCurrency,omitempty"`
	CurrencyCode           *string          `json:"currencyCode,omitempty"`
	AccountID              *string          `json:"accountID,omitempty"`
	AccountType            *AccountType     `json:"accountType,omitempty"`
	Date                   *time.Time       `json:"date,omitempty"`
}

// ShadowedValues maps a move line ID to its hypothetical field edits.
// Every field read during residual resolution goes through the accessors
// below, which check the shadow map before falling back to stored state.
type ShadowedValues map[string]FieldOverrides

// Balance returns the line's company-currency balance, shadowed if overridden.
func (s ShadowedValues) Balance(line MoveLine) decimal.Decimal {
	if ov, ok := s[line.MoveLineID]; ok && ov.Balance != nil {
		return *ov.Balance
	}
	return line.Balance
}

// AmountCurrency returns the line's document-currency amount, shadowed if overridden.
func (s ShadowedValues) AmountCurrency(line MoveLine) decimal.Decimal {
	if ov, ok := s[line.MoveLineID]; ok && ov.AmountCurrency != nil {
		return *ov.AmountCurrency
	}
	return line.AmountCurrency
}

// AmountResidual returns the line's company-currency residual, shadowed if overridden.
func (s ShadowedValues) AmountResidual(line MoveLine) decimal.Decimal {
	if ov, ok := s[line.MoveLineID]; ok && ov.AmountResidual != nil {
		return *ov.AmountResidual
	}
	return line.AmountResidual
}

// AmountResidualCurrency returns the line's own-currency residual, shadowed if overridden.
func (s ShadowedValues) AmountResidualCurrency(line MoveLine) decimal.Decimal {
	if ov, ok := s[line.MoveLineID]; ok && ov.AmountResidualCurrency != nil {
		return *ov.AmountResidualCurrency
	}
	return line.AmountResidualCurrency
}

// CurrencyCode returns the line's currency code, shadowed if overridden.
func (s ShadowedValues) CurrencyCode(line MoveLine) string {
	if ov, ok := s[line.MoveLineID]; ok && ov.CurrencyCode != nil {
		return *ov.CurrencyCode
	}
	return line.CurrencyCode
}

// AccountID returns the line's account ID, shadowed if overridden.
func (s ShadowedValues) AccountID(line MoveLine) string {
	if ov, ok := s[line.MoveLineID]; ok && ov.AccountID != nil {
		return *ov.AccountID
	}
	return line.AccountID
}

// AccountType returns the line's account type, shadowed if overridden.
func (s ShadowedValues) AccountType(line MoveLine) AccountType {
	if ov, ok := s[line.MoveLineID]; ok && ov.AccountType != nil {
		return *ov.AccountType
	}
	return line.AccountType
}

// Date returns the line's accounting date, shadowed if overridden.
func (s ShadowedValues) Date(line MoveLine) time.Time {
	if ov, ok := s[line.MoveLineID]; ok && ov.Date != nil {
		return *ov.Date
	}
	return line.Date
}
