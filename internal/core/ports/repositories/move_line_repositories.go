package repositories

import (
	"context"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoveLineRepository defines persistence operations for journal items
// (move lines) and the aggregation reads feeding the affordability gate.
type MoveLineRepository interface {
	// SaveMoveLines persists the balanced legs of a move dated at the given
	// accounting date and returns the created lines with their assigned IDs.
	SaveMoveLines(ctx context.Context, moveID string, date time.Time, legs []domain.LineLeg) ([]domain.MoveLine, error)

	// FindMoveLineByID retrieves a single move line snapshot.
	// Returns apperrors.ErrNotFound if missing.
	FindMoveLineByID(ctx context.Context, moveLineID string) (*domain.MoveLine, error)

	// FindMoveLinesByIDs retrieves several move line snapshots at once,
	// in the order requested. Missing IDs yield apperrors.ErrNotFound.
	FindMoveLinesByIDs(ctx context.Context, moveLineIDs []string) ([]domain.MoveLine, error)

	// SumBalance returns the posted debit minus credit total of an account
	// up to and including the cutoff date, in company currency.
	SumBalance(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error)

	// SumAmountCurrency is the foreign-currency variant of SumBalance,
	// aggregating amount_currency instead of balance.
	SumAmountCurrency(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error)

	// AdjustDebitCredit overwrites the debit of one line and the credit of
	// another in a single transaction. This is the corrector's bounded
	// mutation; nothing else updates posted amounts.
	AdjustDebitCredit(ctx context.Context, debitLineID string, newDebit decimal.Decimal, creditLineID string, newCredit decimal.Decimal) error
}
