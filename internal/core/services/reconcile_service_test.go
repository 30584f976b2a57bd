package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/core/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReconcileServiceTestSuite struct {
	suite.Suite
	moveLineRepo *MockMoveLineRepository
	currencySvc  *MockCurrencyService
	oracle       *MockRateOracle
	service      portssvc.ReconcileSvcFacade

	usd domain.Currency
	eur domain.Currency
	gbp domain.Currency

	paymentDate time.Time
}

func (suite *ReconcileServiceTestSuite) SetupTest() {
	suite.moveLineRepo = new(MockMoveLineRepository)
	suite.currencySvc = new(MockCurrencyService)
	suite.oracle = new(MockRateOracle)

	company := services.CompanyProfile{CompanyID: "company-1", CurrencyCode: "USD"}
	selector := services.NewRateSelector(suite.oracle)
	resolver := services.NewResidualResolver(suite.currencySvc, suite.oracle)
	suite.service = services.NewReconcileService(company, suite.moveLineRepo, suite.currencySvc, resolver, selector, suite.oracle)

	suite.usd = domain.Currency{CurrencyCode: "USD", Precision: 2}
	suite.eur = domain.Currency{CurrencyCode: "EUR", Precision: 2}
	suite.gbp = domain.Currency{CurrencyCode: "GBP", Precision: 2}
	suite.paymentDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *ReconcileServiceTestSuite) expectCurrency(c domain.Currency) {
	suite.currencySvc.On("GetCurrencyByCode", context.Background(), c.CurrencyCode).Return(&c, nil)
}

func (suite *ReconcileServiceTestSuite) TestTotal_SameCurrency() {
	suite.expectCurrency(suite.eur)
	suite.expectCurrency(suite.usd)

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode:  "EUR",
		SourceCurrencyCode:   "EUR",
		SourceAmountCurrency: decimal.RequireFromString("123.456"),
		PaymentDate:          suite.paymentDate,
	})

	suite.Require().NoError(err)
	suite.Equal("123.46", total.String())
	suite.oracle.AssertNotCalled(suite.T(), "ConversionRate")
	suite.oracle.AssertNotCalled(suite.T(), "Convert")
}

func (suite *ReconcileServiceTestSuite) TestTotal_ForeignSourceCompanyPayment_ManualRate() {
	suite.expectCurrency(suite.usd)
	suite.expectCurrency(suite.eur)

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode:         "USD",
		SourceCurrencyCode:          "EUR",
		SourceAmountCurrency:        decimal.RequireFromString("100"),
		PaymentDate:                 suite.paymentDate,
		ApplyManualCurrencyExchange: true,
		ManualCurrencyExchangeRate:  decimal.RequireFromString("1.10"),
	})

	suite.Require().NoError(err)
	suite.Equal("110", total.String())
	suite.oracle.AssertNotCalled(suite.T(), "ConversionRate")
}

func (suite *ReconcileServiceTestSuite) TestTotal_ForeignSourceCompanyPayment_MarketRate() {
	suite.expectCurrency(suite.usd)
	suite.expectCurrency(suite.eur)
	suite.oracle.On("ConversionRate", context.Background(), "EUR", "USD", "company-1", suite.paymentDate).
		Return(decimal.RequireFromString("1.08"), nil).Once()

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode:  "USD",
		SourceCurrencyCode:   "EUR",
		SourceAmountCurrency: decimal.RequireFromString("100"),
		PaymentDate:          suite.paymentDate,
	})

	suite.Require().NoError(err)
	suite.Equal("108", total.String())
	suite.oracle.AssertExpectations(suite.T())
}

func (suite *ReconcileServiceTestSuite) TestTotal_CompanySourceForeignPayment_PerLineDates() {
	suite.expectCurrency(suite.eur)
	suite.expectCurrency(suite.usd)

	lineDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	lines := []domain.MoveLine{
		{MoveLineID: "ml-1", IsPaymentLine: true, Date: lineDate, AmountResidual: decimal.RequireFromString("100")},
		{MoveLineID: "ml-2", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), AmountResidual: decimal.RequireFromString("50")},
	}
	suite.moveLineRepo.On("FindMoveLinesByIDs", context.Background(), []string{"ml-1", "ml-2"}).Return(lines, nil).Once()

	// Payment lines convert at their own date, the rest at the payment date.
	suite.oracle.On("ConversionRate", context.Background(), "USD", "EUR", "company-1", lineDate).
		Return(decimal.RequireFromString("1.1"), nil).Once()
	suite.oracle.On("ConversionRate", context.Background(), "USD", "EUR", "company-1", suite.paymentDate).
		Return(decimal.RequireFromString("1.2"), nil).Once()

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode: "EUR",
		SourceCurrencyCode:  "USD",
		PaymentDate:         suite.paymentDate,
		MoveLineIDs:         []string{"ml-1", "ml-2"},
	})

	suite.Require().NoError(err)
	// 100 * 1.1 + 50 * 1.2
	suite.Equal("170", total.String())
	suite.oracle.AssertExpectations(suite.T())
}

func (suite *ReconcileServiceTestSuite) TestTotal_CompanySourceForeignPayment_AbsoluteValue() {
	suite.expectCurrency(suite.eur)
	suite.expectCurrency(suite.usd)

	lines := []domain.MoveLine{
		{MoveLineID: "ml-1", Date: suite.paymentDate, AmountResidual: decimal.RequireFromString("-100")},
	}
	suite.moveLineRepo.On("FindMoveLinesByIDs", context.Background(), []string{"ml-1"}).Return(lines, nil).Once()
	suite.oracle.On("ConversionRate", context.Background(), "USD", "EUR", "company-1", suite.paymentDate).
		Return(decimal.RequireFromString("1.2"), nil).Once()

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode: "EUR",
		SourceCurrencyCode:  "USD",
		PaymentDate:         suite.paymentDate,
		MoveLineIDs:         []string{"ml-1"},
	})

	suite.Require().NoError(err)
	suite.Equal("120", total.String())
}

func (suite *ReconcileServiceTestSuite) TestTotal_CompanySourceForeignPayment_ManualRate() {
	suite.expectCurrency(suite.eur)
	suite.expectCurrency(suite.usd)

	lines := []domain.MoveLine{
		{MoveLineID: "ml-1", Date: suite.paymentDate, AmountResidual: decimal.RequireFromString("100")},
	}
	suite.moveLineRepo.On("FindMoveLinesByIDs", context.Background(), []string{"ml-1"}).Return(lines, nil).Once()

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode:         "EUR",
		SourceCurrencyCode:          "USD",
		PaymentDate:                 suite.paymentDate,
		MoveLineIDs:                 []string{"ml-1"},
		ApplyManualCurrencyExchange: true,
		ManualCurrencyExchangeRate:  decimal.RequireFromString("0.95"),
	})

	suite.Require().NoError(err)
	suite.Equal("95", total.String())
	suite.oracle.AssertNotCalled(suite.T(), "ConversionRate")
}

func (suite *ReconcileServiceTestSuite) TestTotal_DistinctForeignPair() {
	suite.expectCurrency(suite.gbp)
	suite.expectCurrency(suite.usd)
	suite.oracle.On("Convert", context.Background(), decimal.RequireFromString("200"), "USD", "GBP", "company-1", suite.paymentDate).
		Return(decimal.RequireFromString("158.404"), nil).Once()

	total, err := suite.service.TotalToReconcile(context.Background(), dto.BatchTotalRequest{
		PaymentCurrencyCode: "GBP",
		SourceCurrencyCode:  "EUR",
		SourceAmount:        decimal.RequireFromString("200"),
		PaymentDate:         suite.paymentDate,
	})

	suite.Require().NoError(err)
	suite.Equal("158.4", total.String())
	suite.oracle.AssertExpectations(suite.T())
}

func (suite *ReconcileServiceTestSuite) TestAvailableResiduals() {
	suite.expectCurrency(suite.usd)

	line := domain.MoveLine{
		MoveLineID:     "ml-1",
		CurrencyCode:   "USD",
		AccountType:    domain.AssetReceivable,
		Balance:        decimal.RequireFromString("50"),
		AmountCurrency: decimal.RequireFromString("50"),
		AmountResidual: decimal.RequireFromString("50"),
		Date:           suite.paymentDate,
	}
	suite.moveLineRepo.On("FindMoveLineByID", context.Background(), "ml-1").Return(&line, nil).Once()

	result, err := suite.service.AvailableResiduals(context.Background(), dto.ResidualPreviewRequest{
		MoveLineID:              "ml-1",
		CounterpartCurrencyCode: "USD",
	})

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal("50", result["USD"].Residual.String())
	suite.Equal("1", result["USD"].Rate.String())
}

func (suite *ReconcileServiceTestSuite) TestAvailableResiduals_LoadsOtherLine() {
	suite.expectCurrency(suite.usd)
	suite.expectCurrency(suite.eur)

	otherDate := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	line := domain.MoveLine{
		MoveLineID:             "ml-1",
		CurrencyCode:           "USD",
		AccountType:            domain.AssetReceivable,
		Balance:                decimal.RequireFromString("50"),
		AmountCurrency:         decimal.RequireFromString("50"),
		AmountResidual:         decimal.RequireFromString("50"),
		AmountResidualCurrency: decimal.RequireFromString("50"),
		Date:                   suite.paymentDate,
	}
	other := domain.MoveLine{MoveLineID: "ml-2", IsPaymentLine: true, Date: otherDate}
	suite.moveLineRepo.On("FindMoveLineByID", context.Background(), "ml-1").Return(&line, nil).Once()
	suite.moveLineRepo.On("FindMoveLineByID", context.Background(), "ml-2").Return(&other, nil).Once()

	// The opposite payment line's date drives the conversion.
	suite.oracle.On("ConversionRate", context.Background(), "USD", "EUR", "company-1", otherDate).
		Return(decimal.RequireFromString("1.2"), nil).Once()

	result, err := suite.service.AvailableResiduals(context.Background(), dto.ResidualPreviewRequest{
		MoveLineID:              "ml-1",
		CounterpartCurrencyCode: "EUR",
		OtherMoveLineID:         "ml-2",
	})

	suite.Require().NoError(err)
	suite.Equal("60", result["EUR"].Residual.String())
	suite.oracle.AssertExpectations(suite.T())
}

func TestReconcileService(t *testing.T) {
	suite.Run(t, new(ReconcileServiceTestSuite))
}
