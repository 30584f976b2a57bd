package services

import (
	"context"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// WriteOffLine describes one write-off to fold into a payment's legs.
type WriteOffLine struct {
	Name           string
	AccountID      string
	AmountCurrency decimal.Decimal // Signed, in the document currency
}

// BalanceLegsInput carries everything needed to derive the balanced legs
// of one payment document.
type BalanceLegsInput struct {
	Context     domain.ExchangeContext
	PaymentType domain.PaymentType
	Amount      decimal.Decimal // Positive, in the document currency
	Override    domain.RateOverride

	// ManualActive mirrors the document's manual-rate controls being
	// active (foreign-currency document). When false the override is
	// ignored and market conversion applies.
	ManualActive bool

	// ForceBalance, when set and no write-offs exist, fixes the liquidity
	// leg's company-currency balance to an externally computed residual.
	ForceBalance *decimal.Decimal

	WriteOffs []WriteOffLine

	PartnerID            string
	Reference            string
	LiquidityName        string // Label for the liquidity leg; falls back to Reference
	DateMaturity         time.Time
	OutstandingAccountID string
	DestinationAccountID string
}

// LineBalancer derives consistent (debit, credit, amount_currency) triples
// for the liquidity, counterpart and write-off legs of a document, in both
// the document and the company currency. The counterpart leg is computed
// as the exact negation of the others, so the company-currency balances of
// one document always sum to zero and any rounding residual lands there.
type LineBalancer struct {
	selector *RateSelector
	oracle   portssvc.RateOracle
}

// NewLineBalancer creates a new LineBalancer.
func NewLineBalancer(selector *RateSelector, oracle portssvc.RateOracle) *LineBalancer {
	return &LineBalancer{selector: selector, oracle: oracle}
}

// BalanceLegs builds the balanced legs for one payment document.
// Emits one leg per role; accounts and partners come from the input, not
// from any master-data lookup.
func (b *LineBalancer) BalanceLegs(ctx context.Context, in BalanceLegsInput) ([]domain.LineLeg, error) {
	if in.OutstandingAccountID == "" {
		return nil, &apperrors.MissingConfigurationError{
			What: "no outstanding payments/receipts account is set for this payment method",
		}
	}

	companyCurrency := in.Context.CompanyCurrency
	documentCurrency := in.Context.DocumentCurrency

	writeOffAmountCurrency := decimal.Zero
	for _, wo := range in.WriteOffs {
		writeOffAmountCurrency = writeOffAmountCurrency.Add(wo.AmountCurrency)
	}

	var liquidityAmountCurrency decimal.Decimal
	switch in.PaymentType {
	case domain.PaymentInbound:
		// Receive money.
		liquidityAmountCurrency = in.Amount
	case domain.PaymentOutbound:
		// Send money.
		liquidityAmountCurrency = in.Amount.Neg()
		writeOffAmountCurrency = writeOffAmountCurrency.Neg()
	default:
		liquidityAmountCurrency = decimal.Zero
		writeOffAmountCurrency = decimal.Zero
	}

	var liquidityBalance, writeOffBalance decimal.Decimal
	var err error

	if in.ManualActive {
		if in.Override.Effective() {
			rate, rateErr := b.selector.SelectRate(ctx, in.Context, in.Override)
			if rateErr != nil {
				return nil, rateErr
			}
			liquidityBalance = companyCurrency.Round(liquidityAmountCurrency.Mul(rate))
			writeOffBalance = companyCurrency.Round(writeOffAmountCurrency.Mul(rate))
		} else {
			writeOffBalance, err = b.convertRounded(ctx, writeOffAmountCurrency, in.Context)
			if err != nil {
				return nil, err
			}
			liquidityBalance, err = b.convertRounded(ctx, liquidityAmountCurrency, in.Context)
			if err != nil {
				return nil, err
			}
		}
	} else {
		writeOffBalance, err = b.convertRounded(ctx, writeOffAmountCurrency, in.Context)
		if err != nil {
			return nil, err
		}

		if len(in.WriteOffs) == 0 && in.ForceBalance != nil {
			// Mirror an externally fixed residual exactly instead of
			// deriving the balance from the rate.
			sign := decimal.NewFromInt(-1)
			if liquidityAmountCurrency.IsPositive() {
				sign = decimal.NewFromInt(1)
			}
			liquidityBalance = sign.Mul(in.ForceBalance.Abs())
		} else {
			liquidityBalance, err = b.convertRounded(ctx, liquidityAmountCurrency, in.Context)
			if err != nil {
				return nil, err
			}
		}
	}

	// The counterpart (receivable/payable) leg absorbs whatever rounding
	// residual remains; the liquidity and write-off legs are never adjusted
	// post hoc.
	counterpartAmountCurrency := liquidityAmountCurrency.Neg().Sub(writeOffAmountCurrency)
	counterpartBalance := liquidityBalance.Neg().Sub(writeOffBalance)

	liquidityName := in.LiquidityName
	if liquidityName == "" {
		liquidityName = in.Reference
	}

	liquidityLeg := domain.LineLeg{
		Role:           domain.LegLiquidity,
		Name:           liquidityName,
		DateMaturity:   in.DateMaturity,
		AmountCurrency: liquidityAmountCurrency,
		CurrencyCode:   documentCurrency.CurrencyCode,
		PartnerID:      in.PartnerID,
		AccountID:      in.OutstandingAccountID,
	}
	liquidityLeg.SetBalance(liquidityBalance)

	counterpartLeg := domain.LineLeg{
		Role:           domain.LegCounterpart,
		Name:           in.Reference,
		DateMaturity:   in.DateMaturity,
		AmountCurrency: counterpartAmountCurrency,
		CurrencyCode:   documentCurrency.CurrencyCode,
		PartnerID:      in.PartnerID,
		AccountID:      in.DestinationAccountID,
	}
	counterpartLeg.SetBalance(counterpartBalance)

	legs := []domain.LineLeg{liquidityLeg, counterpartLeg}

	if len(in.WriteOffs) > 0 && !documentCurrency.IsZero(writeOffAmountCurrency) {
		writeOffLeg := domain.LineLeg{
			Role:           domain.LegWriteOff,
			Name:           in.WriteOffs[0].Name,
			DateMaturity:   in.DateMaturity,
			AmountCurrency: writeOffAmountCurrency,
			CurrencyCode:   documentCurrency.CurrencyCode,
			PartnerID:      in.PartnerID,
			AccountID:      in.WriteOffs[0].AccountID,
		}
		writeOffLeg.SetBalance(writeOffBalance)
		legs = append(legs, writeOffLeg)
	}

	return legs, nil
}

// convertRounded converts a document-currency amount to company currency
// via the market oracle and rounds it at the company currency's precision.
func (b *LineBalancer) convertRounded(ctx context.Context, amount decimal.Decimal, exCtx domain.ExchangeContext) (decimal.Decimal, error) {
	if amount.IsZero() || exCtx.SameCurrency() {
		return exCtx.CompanyCurrency.Round(amount), nil
	}
	converted, err := b.oracle.Convert(ctx, amount,
		exCtx.DocumentCurrency.CurrencyCode,
		exCtx.CompanyCurrency.CurrencyCode,
		exCtx.CompanyID,
		exCtx.AsOfDate,
	)
	if err != nil {
		return decimal.Zero, err
	}
	return exCtx.CompanyCurrency.Round(converted), nil
}
