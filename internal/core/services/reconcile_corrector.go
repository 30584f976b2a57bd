package services

import (
	"context"
	"log/slog"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portsrepo "github.com/rhodetech/fx_ledger_app/internal/core/ports/repositories"
	"github.com/rhodetech/fx_ledger_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// CorrectorInput carries the created payment's legs and the batch of source
// lines it settles.
type CorrectorInput struct {
	PaymentCurrency domain.Currency
	CompanyCurrency domain.Currency
	Override        domain.RateOverride

	// SourceLines is the batch being settled. Batches are built per
	// currency, so all source lines share one currency.
	SourceLines []domain.MoveLine

	LiquidityLines   []domain.MoveLine
	CounterpartLines []domain.MoveLine
}

// ReconcileCorrector fixes the residual drift that float rounding across
// currencies leaves when a payment in one currency fully settles lines in
// another. Example: with a 100:1 rate, paying 12.15 of company currency
// with 0.12 of payment currency computes a 12.00 balance; the corrector
// nudges one debit and one credit leg by the 0.15 delta so the settlement
// matches exactly.
type ReconcileCorrector struct {
	moveLineRepo portsrepo.MoveLineRepository
}

// NewReconcileCorrector creates a new ReconcileCorrector.
func NewReconcileCorrector(moveLineRepo portsrepo.MoveLineRepository) *ReconcileCorrector {
	return &ReconcileCorrector{moveLineRepo: moveLineRepo}
}

// FixPaymentBalance runs once per created payment in edit-mode
// reconciliation. It reports whether an adjustment was persisted. This is
// the only place already-created amounts are mutated, and it touches
// exactly one debit leg and one credit leg.
func (c *ReconcileCorrector) FixPaymentBalance(ctx context.Context, in CorrectorInput) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(in.SourceLines) == 0 {
		return false, nil
	}

	// Same currency on both sides: no cross-currency rounding risk.
	if in.PaymentCurrency.CurrencyCode == in.SourceLines[0].CurrencyCode {
		return false, nil
	}

	sourceBalance := decimal.Zero
	for _, line := range in.SourceLines {
		sourceBalance = sourceBalance.Add(line.AmountResidual)
	}
	sourceBalance = sourceBalance.Abs()

	var paymentRate decimal.Decimal
	if in.Override.Apply {
		paymentRate = in.Override.Rate
	} else if len(in.LiquidityLines) > 0 && !in.LiquidityLines[0].Balance.IsZero() {
		paymentRate = in.LiquidityLines[0].AmountCurrency.Div(in.LiquidityLines[0].Balance)
	} else {
		paymentRate = decimal.Zero
	}
	sourceBalanceConverted := sourceBalance.Mul(paymentRate)

	paymentBalance := decimal.Zero
	paymentAmountCurrency := decimal.Zero
	for _, line := range in.CounterpartLines {
		paymentBalance = paymentBalance.Add(line.Balance)
		paymentAmountCurrency = paymentAmountCurrency.Add(line.AmountCurrency)
	}
	paymentBalance = paymentBalance.Abs()
	paymentAmountCurrency = paymentAmountCurrency.Abs()

	// Translate the source balance into the payment currency to compare
	// them. Only when both match is the user attempting a full settlement;
	// anything else is left alone.
	if !in.PaymentCurrency.IsZero(sourceBalanceConverted.Sub(paymentAmountCurrency)) {
		return false, nil
	}

	deltaBalance := sourceBalance.Sub(paymentBalance)
	if in.CompanyCurrency.IsZero(deltaBalance) {
		return false, nil
	}

	// Peek the first debit-carrying and first credit-carrying leg among
	// liquidity + counterpart lines.
	candidates := append(append([]domain.MoveLine{}, in.LiquidityLines...), in.CounterpartLines...)
	var debitLine, creditLine *domain.MoveLine
	for i := range candidates {
		if debitLine == nil && !candidates[i].Debit.IsZero() {
			debitLine = &candidates[i]
		}
		if creditLine == nil && !candidates[i].Credit.IsZero() {
			creditLine = &candidates[i]
		}
	}
	if debitLine == nil || creditLine == nil {
		return false, nil
	}

	newDebit := debitLine.Debit.Add(deltaBalance)
	newCredit := creditLine.Credit.Add(deltaBalance)
	if err := c.moveLineRepo.AdjustDebitCredit(ctx, debitLine.MoveLineID, newDebit, creditLine.MoveLineID, newCredit); err != nil {
		return false, err
	}

	logger.Info("Adjusted payment legs to match settled residual",
		slog.String("debit_line_id", debitLine.MoveLineID),
		slog.String("credit_line_id", creditLine.MoveLineID),
		slog.String("delta_balance", deltaBalance.String()),
	)
	return true, nil
}
