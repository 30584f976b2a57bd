package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType indicates the direction of a payment.
type PaymentType string

const (
	PaymentInbound  PaymentType = "INBOUND"  // Receive money
	PaymentOutbound PaymentType = "OUTBOUND" // Send money
)

// PaymentState is the lifecycle state of a payment.
type PaymentState string

const (
	PaymentDraft  PaymentState = "DRAFT"
	PaymentPosted PaymentState = "POSTED"
)

// PaymentButtonState is the advisory UI state of the confirm button.
// It never replaces the authoritative validation at confirm time.
type PaymentButtonState string

const (
	ButtonNormal   PaymentButtonState = "NORMAL"
	ButtonDisabled PaymentButtonState = "DISABLED"
	ButtonWarning  PaymentButtonState = "WARNING"
)

// Payment represents a single payment being registered against a journal.
type Payment struct {
	PaymentID            string          `json:"paymentID"` // Primary Key (e.g., UUID)
	JournalID            string          `json:"journalID"`
	PaymentType          PaymentType     `json:"paymentType"`
	PartnerID            string          `json:"partnerID"`
	Amount               decimal.Decimal `json:"amount"` // Positive, in the payment currency
	CurrencyCode         string          `json:"currencyCode"`
	Date                 time.Time       `json:"date"`
	Reference            string          `json:"reference"`
	State                PaymentState    `json:"state"`
	DestinationAccountID string          `json:"destinationAccountID"` // Receivable/payable counterpart account
	OutstandingAccountID string          `json:"outstandingAccountID"` // Liquidity (outstanding payments/receipts) account

	// Manual exchange override fields.
	ApplyManualCurrencyExchange bool            `json:"applyManualCurrencyExchange"`
	ManualCurrencyExchangeRate  decimal.Decimal `json:"manualCurrencyExchangeRate"`
	ActiveManualCurrencyRate    bool            `json:"activeManualCurrencyRate"`

	AuditFields
}

// Override bundles the payment's manual-rate fields into a RateOverride.
func (p Payment) Override() RateOverride {
	return RateOverride{
		Apply: p.ApplyManualCurrencyExchange,
		Rate:  p.ManualCurrencyExchangeRate,
	}
}

// RequiresManualRateChoice reports whether the manual-rate controls are
// active for this payment: the payment currency differs from the company
// currency. Same-currency payments never expose the override.
func (p Payment) RequiresManualRateChoice(companyCurrencyCode string) bool {
	return p.CurrencyCode != "" && p.CurrencyCode != companyCurrencyCode
}
