package dto

import (
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WriteOffRequest describes an optional write-off leg to add to a payment
// when the payment difference is settled rather than kept open.
type WriteOffRequest struct {
	Name      string          `json:"name" binding:"required"`
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"` // In the payment currency, positive
}

// CreatePaymentRequest defines the payload for registering a payment.
type CreatePaymentRequest struct {
	JournalID            string          `json:"journalID" binding:"required"`
	PaymentType          string          `json:"paymentType" binding:"required,oneof=INBOUND OUTBOUND"`
	PartnerID            string          `json:"partnerID"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode         string          `json:"currencyCode" binding:"required,len=3"`
	Date                 time.Time       `json:"date" binding:"required"`
	Reference            string          `json:"reference"`
	DestinationAccountID string          `json:"destinationAccountID" binding:"required"`
	OutstandingAccountID string          `json:"outstandingAccountID"`

	ApplyManualCurrencyExchange bool            `json:"applyManualCurrencyExchange"`
	ManualCurrencyExchangeRate  decimal.Decimal `json:"manualCurrencyExchangeRate"`

	WriteOffs []WriteOffRequest `json:"writeOffs"`

	// ForceBalance fixes the liquidity leg's company-currency balance to an
	// externally computed residual instead of deriving it from the rate.
	ForceBalance *decimal.Decimal `json:"forceBalance,omitempty"`

	// SettleMoveLineIDs lists the open items being settled by this payment.
	// When present and the payment currency differs from theirs, the
	// cross-currency balance corrector runs after creation.
	SettleMoveLineIDs []string `json:"settleMoveLineIDs"`
}

// LineLegResponse is one emitted move line of a payment.
type LineLegResponse struct {
	MoveLineID     string          `json:"moveLineID,omitempty"`
	Role           string          `json:"role"`
	Name           string          `json:"name"`
	AccountID      string          `json:"accountID"`
	CurrencyCode   string          `json:"currencyCode"`
	AmountCurrency decimal.Decimal `json:"amountCurrency"`
	Balance        decimal.Decimal `json:"balance"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
}

// PaymentResponse defines the data returned after payment creation.
type PaymentResponse struct {
	PaymentID                   string            `json:"paymentID"`
	JournalID                   string            `json:"journalID"`
	PaymentType                 string            `json:"paymentType"`
	Amount                      decimal.Decimal   `json:"amount"`
	CurrencyCode                string            `json:"currencyCode"`
	Date                        time.Time         `json:"date"`
	State                       string            `json:"state"`
	ApplyManualCurrencyExchange bool              `json:"applyManualCurrencyExchange"`
	ManualCurrencyExchangeRate  decimal.Decimal   `json:"manualCurrencyExchangeRate"`
	ActiveManualCurrencyRate    bool              `json:"activeManualCurrencyRate"`
	JournalAmount               decimal.Decimal   `json:"journalAmount"` // Manual-rate preview: rate * amount
	Legs                        []LineLegResponse `json:"legs"`
}

// PaymentGateResponse is the advisory affordability state of a payment.
type PaymentGateResponse struct {
	PaymentID             string          `json:"paymentID"`
	JournalCurrentBalance decimal.Decimal `json:"journalCurrentBalance"`
	CanConfirmPayment     bool            `json:"canConfirmPayment"`
	PaymentButtonState    string          `json:"paymentButtonState"`
}

// InsufficientFundsResponse is the structured error body returned when
// confirmation fails the affordability gate.
type InsufficientFundsResponse struct {
	Error            string          `json:"error"`
	AttemptedAmount  decimal.Decimal `json:"attemptedAmount"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// ToLineLegResponse converts a domain move line to its response DTO.
func ToLineLegResponse(line domain.MoveLine, role domain.LegRole) LineLegResponse {
	return LineLegResponse{
		MoveLineID:     line.MoveLineID,
		Role:           string(role),
		Name:           line.Name,
		AccountID:      line.AccountID,
		CurrencyCode:   line.CurrencyCode,
		AmountCurrency: line.AmountCurrency,
		Balance:        line.Balance,
		Debit:          line.Debit,
		Credit:         line.Credit,
	}
}
