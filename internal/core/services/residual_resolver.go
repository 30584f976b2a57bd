package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ResidualResolver computes the available residual amounts of a move line,
// per currency, for reconciliation against an opposite line. Side-effect
// free: every field read honours the query's shadowed values, so callers
// can preview hypothetical edits without mutating stored state.
type ResidualResolver struct {
	currencySvc portssvc.CurrencyReaderSvc
	oracle      portssvc.RateOracle
}

// NewResidualResolver creates a new ResidualResolver.
func NewResidualResolver(currencySvc portssvc.CurrencyReaderSvc, oracle portssvc.RateOracle) *ResidualResolver {
	return &ResidualResolver{currencySvc: currencySvc, oracle: oracle}
}

// Resolve returns a mapping currency -> {residual, rate}. A currency is
// present only if its residual is non-zero. The four branches are ordered
// and mutually exclusive by currency-equality pattern; the company-currency
// entry is always independent of the others.
func (r *ResidualResolver) Resolve(ctx context.Context, companyCurrency domain.Currency, companyID string, q domain.ResidualQuery) (domain.ResidualResult, error) {
	line := q.Line
	shadow := q.Shadowed

	remainingAmount := shadow.AmountResidual(line)
	remainingAmountCurrency := shadow.AmountResidualCurrency(line)
	currencyCode := shadow.CurrencyCode(line)
	accountType := shadow.AccountType(line)

	currency, err := r.currencySvc.GetCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve line currency '%s': %w", currencyCode, err)
	}

	counterpartCurrency := q.CounterpartCurrency
	hasZeroResidual := companyCurrency.IsZero(remainingAmount)
	hasZeroResidualCurrency := currency.IsZero(remainingAmountCurrency)
	isRecPayAccount := accountType.IsReceivablePayable()

	result := domain.ResidualResult{}

	// Company-currency residual is recorded independently of the rest.
	if !hasZeroResidual {
		result[companyCurrency.CurrencyCode] = domain.ResidualAmount{
			Residual: remainingAmount,
			Rate:     decimal.NewFromInt(1),
		}
	}

	// Foreign-denominated line: record its own-currency residual at the
	// accounting rate derived from the line's stored amounts.
	if currencyCode != companyCurrency.CurrencyCode && !hasZeroResidualCurrency {
		if rate, ok := r.accountingRate(line, *currency, companyCurrency, shadow); ok {
			result[currencyCode] = domain.ResidualAmount{
				Residual: remainingAmountCurrency,
				Rate:     rate,
			}
		}
	}

	if currencyCode == companyCurrency.CurrencyCode &&
		isRecPayAccount &&
		!hasZeroResidual &&
		counterpartCurrency.CurrencyCode != companyCurrency.CurrencyCode {
		// Cross-currency projection of the company-currency residual into
		// the counterpart currency.
		rate, err := r.projectionRate(ctx, line, q.OtherLine, counterpartCurrency, companyCurrency, companyID, shadow)
		if err != nil {
			return nil, err
		}
		residualForeign := counterpartCurrency.Round(remainingAmount.Mul(rate))
		if !counterpartCurrency.IsZero(residualForeign) {
			result[counterpartCurrency.CurrencyCode] = domain.ResidualAmount{
				Residual: residualForeign,
				Rate:     rate,
			}
		}
	} else if currencyCode == counterpartCurrency.CurrencyCode &&
		currencyCode != companyCurrency.CurrencyCode &&
		!hasZeroResidualCurrency {
		// Both sides share the same foreign currency.
		rate, _ := r.accountingRate(line, *currency, companyCurrency, shadow)
		result[counterpartCurrency.CurrencyCode] = domain.ResidualAmount{
			Residual: remainingAmountCurrency,
			Rate:     rate,
		}
	}

	return result, nil
}

// accountingRate derives a rate retrospectively from the line's own stored
// amount_currency/balance ratio. Returns false when either amount rounds to
// zero; a zero-balance line never produces an undefined rate.
func (r *ResidualResolver) accountingRate(line domain.MoveLine, currency, companyCurrency domain.Currency, shadow domain.ShadowedValues) (decimal.Decimal, bool) {
	balance := shadow.Balance(line)
	amountCurrency := shadow.AmountCurrency(line)
	if companyCurrency.IsZero(balance) || currency.IsZero(amountCurrency) {
		return decimal.Zero, false
	}
	return amountCurrency.Div(balance).Abs(), true
}

// projectionRate picks the market-or-manual rate projecting company currency into
// the counterpart currency. The rate date is the invoice date for invoices,
// otherwise the line's own effective date, unless the opposite line is a
// payment/statement line while this one is not, in which case the opposite
// line's date wins.
func (r *ResidualResolver) projectionRate(ctx context.Context, line domain.MoveLine, other *domain.MoveLine, counterpartCurrency, companyCurrency domain.Currency, companyID string, shadow domain.ShadowedValues) (decimal.Decimal, error) {
	var exchangeRateDate time.Time
	if line.IsInvoice && line.InvoiceDate != nil {
		exchangeRateDate = *line.InvoiceDate
	} else {
		exchangeRateDate = shadow.Date(line)
	}
	if other != nil && !line.IsPaymentLine && other.IsPaymentLine {
		exchangeRateDate = shadow.Date(*other)
	}

	if line.ApplyManualCurrencyExchange {
		return line.ManualCurrencyExchangeRate, nil
	}
	return r.oracle.ConversionRate(ctx,
		companyCurrency.CurrencyCode,
		counterpartCurrency.CurrencyCode,
		companyID,
		exchangeRateDate,
	)
}
