package dto

import (
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ResidualPreviewRequest asks for the available residual amounts of a move
// line, per currency, against an opposite line in the given currency.
type ResidualPreviewRequest struct {
	MoveLineID              string                           `json:"moveLineID" binding:"required"`
	CounterpartCurrencyCode string                           `json:"counterpartCurrencyCode" binding:"required,len=3"`
	OtherMoveLineID         string                           `json:"otherMoveLineID"`
	ShadowedValues          map[string]domain.FieldOverrides `json:"shadowedValues"`
}

// ResidualEntryResponse is the outstanding amount and rate for one currency.
type ResidualEntryResponse struct {
	Residual decimal.Decimal `json:"residual"`
	Rate     decimal.Decimal `json:"rate"`
}

// ResidualPreviewResponse maps currency code to its residual entry.
type ResidualPreviewResponse struct {
	MoveLineID string                           `json:"moveLineID"`
	Residuals  map[string]ResidualEntryResponse `json:"residuals"`
}

// ToResidualPreviewResponse converts a domain residual result.
func ToResidualPreviewResponse(moveLineID string, result domain.ResidualResult) ResidualPreviewResponse {
	residuals := make(map[string]ResidualEntryResponse, len(result))
	for code, entry := range result {
		residuals[code] = ResidualEntryResponse{Residual: entry.Residual, Rate: entry.Rate}
	}
	return ResidualPreviewResponse{MoveLineID: moveLineID, Residuals: residuals}
}

// BatchTotalRequest asks for the total amount, in the payment currency,
// needed to fully settle a batch of move lines.
type BatchTotalRequest struct {
	PaymentCurrencyCode  string          `json:"paymentCurrencyCode" binding:"required,len=3"`
	SourceCurrencyCode   string          `json:"sourceCurrencyCode" binding:"required,len=3"`
	SourceAmountCurrency decimal.Decimal `json:"sourceAmountCurrency"` // Batch total in the source currency
	SourceAmount         decimal.Decimal `json:"sourceAmount"`         // Batch total in the company currency
	PaymentDate          time.Time       `json:"paymentDate" binding:"required"`
	MoveLineIDs          []string        `json:"moveLineIDs"`

	ApplyManualCurrencyExchange bool            `json:"applyManualCurrencyExchange"`
	ManualCurrencyExchangeRate  decimal.Decimal `json:"manualCurrencyExchangeRate"`
}

// BatchTotalResponse carries the computed settlement total.
type BatchTotalResponse struct {
	Total        decimal.Decimal `json:"total"`
	CurrencyCode string          `json:"currencyCode"`
}
