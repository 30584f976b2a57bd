package services_test

import (
	"context"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateOracle ---
type MockRateOracle struct {
	mock.Mock
}

func (m *MockRateOracle) ConversionRate(ctx context.Context, fromCode, toCode, companyID string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCode, toCode, companyID, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateOracle) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode, companyID string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, fromCode, toCode, companyID, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Mock MoveLineRepository ---
type MockMoveLineRepository struct {
	mock.Mock
}

func (m *MockMoveLineRepository) SaveMoveLines(ctx context.Context, moveID string, date time.Time, legs []domain.LineLeg) ([]domain.MoveLine, error) {
	args := m.Called(ctx, moveID, date, legs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MoveLine), args.Error(1)
}

func (m *MockMoveLineRepository) FindMoveLineByID(ctx context.Context, moveLineID string) (*domain.MoveLine, error) {
	args := m.Called(ctx, moveLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MoveLine), args.Error(1)
}

func (m *MockMoveLineRepository) FindMoveLinesByIDs(ctx context.Context, moveLineIDs []string) ([]domain.MoveLine, error) {
	args := m.Called(ctx, moveLineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MoveLine), args.Error(1)
}

func (m *MockMoveLineRepository) SumBalance(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMoveLineRepository) SumAmountCurrency(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMoveLineRepository) AdjustDebitCredit(ctx context.Context, debitLineID string, newDebit decimal.Decimal, creditLineID string, newCredit decimal.Decimal) error {
	args := m.Called(ctx, debitLineID, newDebit, creditLineID, newCredit)
	return args.Error(0)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, legs []domain.LineLeg) ([]domain.MoveLine, error) {
	args := m.Called(ctx, payment, legs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MoveLine), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByIDs(ctx context.Context, paymentIDs []string) ([]domain.Payment, error) {
	args := m.Called(ctx, paymentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdatePaymentState(ctx context.Context, paymentID string, state domain.PaymentState, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, paymentID, state, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}
