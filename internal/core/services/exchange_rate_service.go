package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portsrepo "github.com/rhodetech/fx_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// exchangeRateService manages stored market rates and serves as the rate
// oracle for all multi-currency computations.
type exchangeRateService struct {
	rateRepo    portsrepo.ExchangeRateRepository
	currencySvc portssvc.CurrencyReaderSvc
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepository, currencySvc portssvc.CurrencyReaderSvc) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:    rateRepo,
		currencySvc: currencySvc,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// CreateExchangeRate handles the creation of a new exchange rate.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	// Check if currencies exist
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.FromCurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: 'from' currency code '%s' not found", apperrors.ErrValidation, req.FromCurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate 'from' currency '%s': %w", req.FromCurrencyCode, err)
	}
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.ToCurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: 'to' currency code '%s' not found", apperrors.ErrValidation, req.ToCurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate 'to' currency '%s': %w", req.ToCurrencyCode, err)
	}

	now := time.Now()

	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: req.FromCurrencyCode,
		ToCurrencyCode:   req.ToCurrencyCode,
		Rate:             req.Rate,
		DateEffective:    req.DateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}

	return &rate, nil
}

// GetExchangeRate retrieves the latest stored rate for a currency pair.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, fromCode, toCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

// ConversionRate returns the factor turning one unit of the from currency
// into the to currency at the given date. A pair stored in the opposite
// direction is inverted; an identical pair yields 1.
func (s *exchangeRateService) ConversionRate(ctx context.Context, fromCode, toCode, companyID string, date time.Time) (decimal.Decimal, error) {
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	rate, err := s.rateRepo.FindRateAsOf(ctx, fromCode, toCode, date)
	if err == nil {
		return rate.Rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to look up rate %s->%s: %w", fromCode, toCode, err)
	}

	// Fall back to the inverse pair.
	inverse, err := s.rateRepo.FindRateAsOf(ctx, toCode, fromCode, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: no exchange rate for %s->%s effective %s", apperrors.ErrNotFound, fromCode, toCode, date.Format("2006-01-02"))
		}
		return decimal.Zero, fmt.Errorf("failed to look up rate %s->%s: %w", toCode, fromCode, err)
	}
	if inverse.Rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: stored rate for %s->%s is zero", apperrors.ErrValidation, toCode, fromCode)
	}
	return decimal.NewFromInt(1).Div(inverse.Rate), nil
}

// Convert converts an amount between two currencies at the given date.
// The result is not rounded; callers round at the target currency's
// precision.
func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode, companyID string, date time.Time) (decimal.Decimal, error) {
	if amount.IsZero() || fromCode == toCode {
		return amount, nil
	}
	rate, err := s.ConversionRate(ctx, fromCode, toCode, companyID, date)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}
