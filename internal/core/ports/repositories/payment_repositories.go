package repositories

import (
	"context"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
)

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	// SavePayment persists a payment together with its balanced legs and
	// returns the created move lines with their assigned IDs.
	SavePayment(ctx context.Context, payment domain.Payment, legs []domain.LineLeg) ([]domain.MoveLine, error)

	// FindPaymentByID retrieves a payment. Returns apperrors.ErrNotFound if missing.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentsByIDs retrieves several payments at once.
	FindPaymentsByIDs(ctx context.Context, paymentIDs []string) ([]domain.Payment, error)

	// UpdatePaymentState transitions a payment to a new lifecycle state.
	UpdatePaymentState(ctx context.Context, paymentID string, state domain.PaymentState, updatedBy string, updatedAt time.Time) error
}

// JournalRepository defines read operations for journal master data.
type JournalRepository interface {
	// FindJournalByID retrieves a journal. Returns apperrors.ErrNotFound if missing.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)
}

// AccountRepository defines read operations for account master data.
type AccountRepository interface {
	// FindAccountByID retrieves an account. Returns apperrors.ErrNotFound if missing.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}
