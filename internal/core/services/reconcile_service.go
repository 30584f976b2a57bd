package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portsrepo "github.com/rhodetech/fx_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// reconcileService exposes the side-effect-free reconciliation
// computations: residual previews and batch settlement totals.
type reconcileService struct {
	company      CompanyProfile
	moveLineRepo portsrepo.MoveLineRepository
	currencySvc  portssvc.CurrencyReaderSvc
	resolver     *ResidualResolver
	selector     *RateSelector
	oracle       portssvc.RateOracle
}

// NewReconcileService creates a new reconciliation service.
func NewReconcileService(
	company CompanyProfile,
	moveLineRepo portsrepo.MoveLineRepository,
	currencySvc portssvc.CurrencyReaderSvc,
	resolver *ResidualResolver,
	selector *RateSelector,
	oracle portssvc.RateOracle,
) portssvc.ReconcileSvcFacade {
	return &reconcileService{
		company:      company,
		moveLineRepo: moveLineRepo,
		currencySvc:  currencySvc,
		resolver:     resolver,
		selector:     selector,
		oracle:       oracle,
	}
}

var _ portssvc.ReconcileSvcFacade = (*reconcileService)(nil)

// AvailableResiduals previews the per-currency residual of a move line
// against an opposite line's currency.
func (s *reconcileService) AvailableResiduals(ctx context.Context, req dto.ResidualPreviewRequest) (domain.ResidualResult, error) {
	line, err := s.moveLineRepo.FindMoveLineByID(ctx, req.MoveLineID)
	if err != nil {
		return nil, err
	}

	var otherLine *domain.MoveLine
	if req.OtherMoveLineID != "" {
		otherLine, err = s.moveLineRepo.FindMoveLineByID(ctx, req.OtherMoveLineID)
		if err != nil {
			return nil, err
		}
	}

	counterpartCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, req.CounterpartCurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve counterpart currency '%s': %w", req.CounterpartCurrencyCode, err)
	}
	companyCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, s.company.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company currency: %w", err)
	}

	query := domain.ResidualQuery{
		Line:                *line,
		CounterpartCurrency: *counterpartCurrency,
		Shadowed:            domain.ShadowedValues(req.ShadowedValues),
		OtherLine:           otherLine,
	}
	return s.resolver.Resolve(ctx, *companyCurrency, s.company.CompanyID, query)
}

// TotalToReconcile computes the total amount needed in the payment
// currency to fully settle the batch. Branch selection follows the
// currency combination of source lines, payment and company, first match
// wins.
func (s *reconcileService) TotalToReconcile(ctx context.Context, req dto.BatchTotalRequest) (decimal.Decimal, error) {
	paymentCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, req.PaymentCurrencyCode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve payment currency '%s': %w", req.PaymentCurrencyCode, err)
	}
	companyCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, s.company.CurrencyCode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve company currency: %w", err)
	}

	override := domain.RateOverride{
		Apply: req.ApplyManualCurrencyExchange,
		Rate:  req.ManualCurrencyExchangeRate,
	}
	companyCode := companyCurrency.CurrencyCode

	switch {
	case req.SourceCurrencyCode == req.PaymentCurrencyCode:
		// Same currency on both sides.
		return paymentCurrency.Round(req.SourceAmountCurrency), nil

	case req.SourceCurrencyCode != companyCode && req.PaymentCurrencyCode == companyCode:
		// Foreign currency on the source lines, company currency on the payment.
		sourceCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, req.SourceCurrencyCode)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to resolve source currency '%s': %w", req.SourceCurrencyCode, err)
		}
		rate, err := s.selector.SelectRate(ctx, domain.ExchangeContext{
			CompanyCurrency:  *companyCurrency,
			DocumentCurrency: *sourceCurrency,
			CompanyID:        s.company.CompanyID,
			AsOfDate:         req.PaymentDate,
		}, override)
		if err != nil {
			return decimal.Zero, err
		}
		return companyCurrency.Round(req.SourceAmountCurrency.Mul(rate)), nil

	case req.SourceCurrencyCode == companyCode && req.PaymentCurrencyCode != companyCode:
		// Company currency on the source lines, foreign currency on the payment.
		total, err := s.projectedResidualTotal(ctx, req, *companyCurrency, *paymentCurrency, override)
		if err != nil {
			return decimal.Zero, err
		}
		return paymentCurrency.Round(total.Abs()), nil

	default:
		// Foreign payment currency different from the source lines' one.
		converted, err := s.oracle.Convert(ctx, req.SourceAmount, companyCode, paymentCurrency.CurrencyCode, s.company.CompanyID, req.PaymentDate)
		if err != nil {
			return decimal.Zero, err
		}
		return paymentCurrency.Round(converted), nil
	}
}

// projectedResidualTotal sums the company-currency residuals of the batch
// projected into the payment currency. Payment and statement lines convert
// at their own date; everything else at the payment date.
func (s *reconcileService) projectedResidualTotal(ctx context.Context, req dto.BatchTotalRequest, companyCurrency, paymentCurrency domain.Currency, override domain.RateOverride) (decimal.Decimal, error) {
	lines, err := s.moveLineRepo.FindMoveLinesByIDs(ctx, req.MoveLineIDs)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load batch lines: %w", err)
	}

	total := decimal.Zero
	for _, line := range lines {
		var conversionDate time.Time
		if line.IsPaymentLine {
			conversionDate = line.Date
		} else {
			conversionDate = req.PaymentDate
		}

		rate, err := s.selector.SelectReverseRate(ctx, domain.ExchangeContext{
			CompanyCurrency:  companyCurrency,
			DocumentCurrency: paymentCurrency,
			CompanyID:        s.company.CompanyID,
			AsOfDate:         conversionDate,
		}, override)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(line.AmountResidual.Mul(rate))
	}
	return total, nil
}
