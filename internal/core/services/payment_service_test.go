package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/core/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	paymentRepo  *MockPaymentRepository
	journalRepo  *MockJournalRepository
	accountRepo  *MockAccountRepository
	moveLineRepo *MockMoveLineRepository
	currencySvc  *MockCurrencyService
	oracle       *MockRateOracle
	service      portssvc.PaymentSvcFacade

	usd domain.Currency
	eur domain.Currency
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.paymentRepo = new(MockPaymentRepository)
	suite.journalRepo = new(MockJournalRepository)
	suite.accountRepo = new(MockAccountRepository)
	suite.moveLineRepo = new(MockMoveLineRepository)
	suite.currencySvc = new(MockCurrencyService)
	suite.oracle = new(MockRateOracle)

	company := services.CompanyProfile{CompanyID: "company-1", CurrencyCode: "USD"}
	balancer := services.NewLineBalancer(services.NewRateSelector(suite.oracle), suite.oracle)
	corrector := services.NewReconcileCorrector(suite.moveLineRepo)
	suite.service = services.NewPaymentService(company, suite.paymentRepo, suite.journalRepo, suite.accountRepo, suite.moveLineRepo, suite.currencySvc, balancer, corrector)

	suite.usd = domain.Currency{CurrencyCode: "USD", Precision: 2}
	suite.eur = domain.Currency{CurrencyCode: "EUR", Precision: 2}
}

func (suite *PaymentServiceTestSuite) bankJournal() *domain.Journal {
	return &domain.Journal{
		JournalID:        "jnl-bank",
		Name:             "Bank",
		Type:             domain.JournalTypeBank,
		DefaultAccountID: "acc-bank",
	}
}

func (suite *PaymentServiceTestSuite) expectActiveAccount(accountID string) {
	suite.accountRepo.On("FindAccountByID", mock.Anything, accountID).
		Return(&domain.Account{AccountID: accountID, AccountType: domain.Asset, IsActive: true}, nil)
}

func (suite *PaymentServiceTestSuite) createRequest() dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{
		JournalID:                   "jnl-bank",
		PaymentType:                 "INBOUND",
		Amount:                      decimal.RequireFromString("100"),
		CurrencyCode:                "EUR",
		Date:                        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Reference:                   "PAY/001",
		DestinationAccountID:        "acc-receivable",
		OutstandingAccountID:        "acc-outstanding",
		ApplyManualCurrencyExchange: true,
		ManualCurrencyExchangeRate:  decimal.RequireFromString("1.10"),
	}
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_ManualRate() {
	ctx := context.Background()
	req := suite.createRequest()

	suite.currencySvc.On("GetCurrencyByCode", ctx, "EUR").Return(&suite.eur, nil)
	suite.currencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&suite.usd, nil)
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.expectActiveAccount("acc-receivable")
	suite.expectActiveAccount("acc-outstanding")

	var savedLegs []domain.LineLeg
	suite.paymentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.LineLeg")).
		Run(func(args mock.Arguments) {
			savedLegs = args.Get(2).([]domain.LineLeg)
		}).
		Return([]domain.MoveLine{{MoveLineID: "ml-1"}, {MoveLineID: "ml-2"}}, nil).Once()

	resp, err := suite.service.CreatePayment(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal("DRAFT", resp.State)
	suite.True(resp.ActiveManualCurrencyRate)
	// Manual-rate preview: 1.10 * 100.
	suite.Equal("110", resp.JournalAmount.String())
	suite.Len(resp.Legs, 2)

	suite.Require().Len(savedLegs, 2)
	suite.True(domain.SumBalances(savedLegs).IsZero())
	suite.Equal("110", savedLegs[0].Debit.String())

	suite.paymentRepo.AssertExpectations(suite.T())
	suite.oracle.AssertNotCalled(suite.T(), "Convert")
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_NonPositiveAmount() {
	req := suite.createRequest()
	req.Amount = decimal.Zero

	resp, err := suite.service.CreatePayment(context.Background(), req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.paymentRepo.AssertNotCalled(suite.T(), "SavePayment")
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_UnknownJournal() {
	ctx := context.Background()
	req := suite.createRequest()

	suite.currencySvc.On("GetCurrencyByCode", ctx, "EUR").Return(&suite.eur, nil)
	suite.currencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&suite.usd, nil)
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(nil, apperrors.ErrNotFound).Once()

	resp, err := suite.service.CreatePayment(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_MissingOutstandingAccount() {
	ctx := context.Background()
	req := suite.createRequest()
	req.OutstandingAccountID = ""

	suite.currencySvc.On("GetCurrencyByCode", ctx, "EUR").Return(&suite.eur, nil)
	suite.currencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&suite.usd, nil)
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.expectActiveAccount("acc-receivable")

	resp, err := suite.service.CreatePayment(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)

	var missingCfg *apperrors.MissingConfigurationError
	suite.ErrorAs(err, &missingCfg)
	suite.paymentRepo.AssertNotCalled(suite.T(), "SavePayment")
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_InactiveAccount() {
	ctx := context.Background()
	req := suite.createRequest()

	suite.currencySvc.On("GetCurrencyByCode", ctx, "EUR").Return(&suite.eur, nil)
	suite.currencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&suite.usd, nil)
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.accountRepo.On("FindAccountByID", mock.Anything, "acc-receivable").
		Return(&domain.Account{AccountID: "acc-receivable", IsActive: false}, nil).Once()

	resp, err := suite.service.CreatePayment(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "inactive")
	suite.paymentRepo.AssertNotCalled(suite.T(), "SavePayment")
}

func (suite *PaymentServiceTestSuite) draftOutbound(amount string) *domain.Payment {
	return &domain.Payment{
		PaymentID:    "pay-1",
		JournalID:    "jnl-bank",
		PaymentType:  domain.PaymentOutbound,
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: "USD",
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		State:        domain.PaymentDraft,
	}
}

func (suite *PaymentServiceTestSuite) TestConfirmPayment_InsufficientFunds() {
	ctx := context.Background()
	payment := suite.draftOutbound("500")

	suite.paymentRepo.On("FindPaymentByID", ctx, "pay-1").Return(payment, nil).Once()
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.moveLineRepo.On("SumBalance", ctx, "acc-bank", payment.Date).Return(decimal.RequireFromString("300"), nil).Once()

	err := suite.service.ConfirmPayment(ctx, "pay-1", "user-1")

	suite.Require().Error(err)
	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	suite.Equal("500", insufficient.AttemptedAmount.String())
	suite.Equal("300", insufficient.AvailableBalance.String())
	suite.paymentRepo.AssertNotCalled(suite.T(), "UpdatePaymentState")
}

func (suite *PaymentServiceTestSuite) TestConfirmPayment_ZeroBalanceSkipsGate() {
	ctx := context.Background()
	payment := suite.draftOutbound("500")

	suite.paymentRepo.On("FindPaymentByID", ctx, "pay-1").Return(payment, nil).Once()
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.moveLineRepo.On("SumBalance", ctx, "acc-bank", payment.Date).Return(decimal.Zero, nil).Once()
	suite.paymentRepo.On("UpdatePaymentState", ctx, "pay-1", domain.PaymentPosted, "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.ConfirmPayment(ctx, "pay-1", "user-1")

	suite.Require().NoError(err)
	suite.paymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestConfirmPayment_SufficientFunds() {
	ctx := context.Background()
	payment := suite.draftOutbound("200")

	suite.paymentRepo.On("FindPaymentByID", ctx, "pay-1").Return(payment, nil).Once()
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.moveLineRepo.On("SumBalance", ctx, "acc-bank", payment.Date).Return(decimal.RequireFromString("300"), nil).Once()
	suite.paymentRepo.On("UpdatePaymentState", ctx, "pay-1", domain.PaymentPosted, "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.ConfirmPayment(ctx, "pay-1", "user-1")

	suite.Require().NoError(err)
	suite.paymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestConfirmPayment_InboundSkipsGate() {
	ctx := context.Background()
	payment := suite.draftOutbound("500")
	payment.PaymentType = domain.PaymentInbound

	suite.paymentRepo.On("FindPaymentByID", ctx, "pay-1").Return(payment, nil).Once()
	suite.paymentRepo.On("UpdatePaymentState", ctx, "pay-1", domain.PaymentPosted, "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.ConfirmPayment(ctx, "pay-1", "user-1")

	suite.Require().NoError(err)
	suite.journalRepo.AssertNotCalled(suite.T(), "FindJournalByID")
}

func (suite *PaymentServiceTestSuite) TestConfirmPayment_AlreadyPosted() {
	ctx := context.Background()
	payment := suite.draftOutbound("100")
	payment.State = domain.PaymentPosted

	suite.paymentRepo.On("FindPaymentByID", ctx, "pay-1").Return(payment, nil).Once()

	err := suite.service.ConfirmPayment(ctx, "pay-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.paymentRepo.AssertNotCalled(suite.T(), "UpdatePaymentState")
}

func (suite *PaymentServiceTestSuite) TestButtonStates_SharedBalanceLookup() {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	payments := []domain.Payment{
		{PaymentID: "pay-1", JournalID: "jnl-bank", PaymentType: domain.PaymentOutbound, Amount: decimal.RequireFromString("500"), Date: date, State: domain.PaymentDraft},
		{PaymentID: "pay-2", JournalID: "jnl-bank", PaymentType: domain.PaymentOutbound, Amount: decimal.RequireFromString("100"), Date: date, State: domain.PaymentDraft},
	}

	suite.paymentRepo.On("FindPaymentsByIDs", ctx, []string{"pay-1", "pay-2"}).Return(payments, nil).Once()
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	// One aggregation for both payments: same account, same date.
	suite.moveLineRepo.On("SumBalance", ctx, "acc-bank", date).Return(decimal.RequireFromString("300"), nil).Once()

	states, err := suite.service.ButtonStates(ctx, []string{"pay-1", "pay-2"})

	suite.Require().NoError(err)
	suite.Require().Len(states, 2)

	suite.False(states["pay-1"].CanConfirmPayment)
	suite.Equal(string(domain.ButtonDisabled), states["pay-1"].PaymentButtonState)
	suite.Equal("300", states["pay-1"].JournalCurrentBalance.String())

	suite.True(states["pay-2"].CanConfirmPayment)
	suite.Equal(string(domain.ButtonNormal), states["pay-2"].PaymentButtonState)

	suite.moveLineRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestButtonState_ZeroBalanceAllowsConfirm() {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	payments := []domain.Payment{
		{PaymentID: "pay-1", JournalID: "jnl-bank", PaymentType: domain.PaymentOutbound, Amount: decimal.RequireFromString("500"), Date: date, State: domain.PaymentDraft},
	}

	suite.paymentRepo.On("FindPaymentsByIDs", ctx, []string{"pay-1"}).Return(payments, nil).Once()
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(suite.bankJournal(), nil).Once()
	suite.moveLineRepo.On("SumBalance", ctx, "acc-bank", date).Return(decimal.Zero, nil).Once()

	state, err := suite.service.ButtonState(ctx, "pay-1")

	suite.Require().NoError(err)
	suite.True(state.CanConfirmPayment)
	suite.Equal(string(domain.ButtonNormal), state.PaymentButtonState)
}

func (suite *PaymentServiceTestSuite) TestButtonStates_ForeignJournalUsesAmountCurrency() {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	journal := suite.bankJournal()
	journal.CurrencyCode = "EUR"
	payments := []domain.Payment{
		{PaymentID: "pay-1", JournalID: "jnl-bank", PaymentType: domain.PaymentOutbound, Amount: decimal.RequireFromString("100"), Date: date, State: domain.PaymentDraft},
	}

	suite.paymentRepo.On("FindPaymentsByIDs", ctx, []string{"pay-1"}).Return(payments, nil).Once()
	suite.journalRepo.On("FindJournalByID", ctx, "jnl-bank").Return(journal, nil).Once()
	suite.moveLineRepo.On("SumAmountCurrency", ctx, "acc-bank", date).Return(decimal.RequireFromString("250"), nil).Once()

	state, err := suite.service.ButtonState(ctx, "pay-1")

	suite.Require().NoError(err)
	suite.True(state.CanConfirmPayment)
	suite.Equal("250", state.JournalCurrentBalance.String())
	suite.moveLineRepo.AssertNotCalled(suite.T(), "SumBalance")
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
