package services

import (
	"context"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// ReconcileSvcFacade exposes the side-effect-free reconciliation
// computations: residual previews and batch settlement totals.
type ReconcileSvcFacade interface {
	// AvailableResiduals computes, per currency, how much of a line remains
	// unsettled and at what rate, optionally under shadowed field edits.
	AvailableResiduals(ctx context.Context, req dto.ResidualPreviewRequest) (domain.ResidualResult, error)

	// TotalToReconcile computes the amount needed in the payment currency
	// to fully settle a batch of move lines.
	TotalToReconcile(ctx context.Context, req dto.BatchTotalRequest) (decimal.Decimal, error)
}
