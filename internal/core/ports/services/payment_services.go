package services

import (
	"context"

	"github.com/rhodetech/fx_ledger_app/internal/dto"
)

// PaymentWriterSvc defines write operations for payments.
type PaymentWriterSvc interface {
	// CreatePayment registers a payment: selects the exchange rate, builds
	// the balanced legs and persists them. Runs the cross-currency balance
	// corrector when the payment settles lines in another currency.
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, creatorUserID string) (*dto.PaymentResponse, error)

	// ConfirmPayment re-validates the affordability gate and posts the
	// payment. Returns *apperrors.InsufficientFundsError when the journal
	// balance does not cover an outbound payment.
	ConfirmPayment(ctx context.Context, paymentID string, userID string) error
}

// PaymentGateSvc defines the advisory affordability derivations.
type PaymentGateSvc interface {
	// ButtonState computes the journal balance, confirmability and button
	// state for one payment.
	ButtonState(ctx context.Context, paymentID string) (*dto.PaymentGateResponse, error)

	// ButtonStates is the batched variant: journal balances are aggregated
	// once per distinct (account, date) pair across the payments.
	ButtonStates(ctx context.Context, paymentIDs []string) (map[string]dto.PaymentGateResponse, error)
}

// PaymentSvcFacade combines all payment-related service interfaces.
type PaymentSvcFacade interface {
	PaymentWriterSvc
	PaymentGateSvc
}
