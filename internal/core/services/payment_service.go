package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	portsrepo "github.com/rhodetech/fx_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/rhodetech/fx_ledger_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyProfile identifies the company the service operates for and its
// functional currency.
type CompanyProfile struct {
	CompanyID    string
	CurrencyCode string
}

// paymentService registers payments (rate selection, leg balancing,
// persistence) and derives the journal affordability gate.
type paymentService struct {
	company      CompanyProfile
	paymentRepo  portsrepo.PaymentRepository
	journalRepo  portsrepo.JournalRepository
	accountRepo  portsrepo.AccountRepository
	moveLineRepo portsrepo.MoveLineRepository
	currencySvc  portssvc.CurrencyReaderSvc
	balancer     *LineBalancer
	corrector    *ReconcileCorrector
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	company CompanyProfile,
	paymentRepo portsrepo.PaymentRepository,
	journalRepo portsrepo.JournalRepository,
	accountRepo portsrepo.AccountRepository,
	moveLineRepo portsrepo.MoveLineRepository,
	currencySvc portssvc.CurrencyReaderSvc,
	balancer *LineBalancer,
	corrector *ReconcileCorrector,
) portssvc.PaymentSvcFacade {
	return &paymentService{
		company:      company,
		paymentRepo:  paymentRepo,
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
		moveLineRepo: moveLineRepo,
		currencySvc:  currencySvc,
		balancer:     balancer,
		corrector:    corrector,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// CreatePayment registers a payment and persists its balanced legs.
func (s *paymentService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, creatorUserID string) (*dto.PaymentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	documentCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: payment currency '%s' is unknown", apperrors.ErrValidation, req.CurrencyCode)
	}
	companyCurrency, err := s.currencySvc.GetCurrencyByCode(ctx, s.company.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company currency: %w", err)
	}

	if _, err := s.journalRepo.FindJournalByID(ctx, req.JournalID); err != nil {
		return nil, fmt.Errorf("%w: journal '%s' is unknown", apperrors.ErrValidation, req.JournalID)
	}
	if err := s.validateAccounts(ctx, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:            uuid.NewString(),
		JournalID:            req.JournalID,
		PaymentType:          domain.PaymentType(req.PaymentType),
		PartnerID:            req.PartnerID,
		Amount:               req.Amount,
		CurrencyCode:         req.CurrencyCode,
		Date:                 req.Date,
		Reference:            req.Reference,
		State:                domain.PaymentDraft,
		DestinationAccountID: req.DestinationAccountID,
		OutstandingAccountID: req.OutstandingAccountID,

		ApplyManualCurrencyExchange: req.ApplyManualCurrencyExchange,
		ManualCurrencyExchangeRate:  req.ManualCurrencyExchangeRate,

		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	payment.ActiveManualCurrencyRate = payment.RequiresManualRateChoice(companyCurrency.CurrencyCode)

	exCtx := domain.ExchangeContext{
		CompanyCurrency:  *companyCurrency,
		DocumentCurrency: *documentCurrency,
		CompanyID:        s.company.CompanyID,
		AsOfDate:         payment.Date,
	}

	writeOffs := make([]WriteOffLine, len(req.WriteOffs))
	for i, wo := range req.WriteOffs {
		writeOffs[i] = WriteOffLine{
			Name:           wo.Name,
			AccountID:      wo.AccountID,
			AmountCurrency: wo.Amount,
		}
	}

	legs, err := s.balancer.BalanceLegs(ctx, BalanceLegsInput{
		Context:              exCtx,
		PaymentType:          payment.PaymentType,
		Amount:               payment.Amount,
		Override:             payment.Override(),
		ManualActive:         payment.ActiveManualCurrencyRate,
		ForceBalance:         req.ForceBalance,
		WriteOffs:            writeOffs,
		PartnerID:            payment.PartnerID,
		Reference:            payment.Reference,
		DateMaturity:         payment.Date,
		OutstandingAccountID: payment.OutstandingAccountID,
		DestinationAccountID: payment.DestinationAccountID,
	})
	if err != nil {
		return nil, err
	}

	moveLines, err := s.paymentRepo.SavePayment(ctx, payment, legs)
	if err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info("Payment created",
		slog.String("payment_id", payment.PaymentID),
		slog.String("currency", payment.CurrencyCode),
		slog.Bool("manual_rate", payment.ApplyManualCurrencyExchange),
	)

	if len(req.SettleMoveLineIDs) > 0 {
		if err := s.runCorrector(ctx, payment, moveLines, req.SettleMoveLineIDs, *companyCurrency, *documentCurrency); err != nil {
			return nil, err
		}
	}

	return s.toPaymentResponse(payment, legs, moveLines), nil
}

// validateAccounts checks the accounts the legs will be booked on. An
// inactive account is rejected the same way as a missing one.
func (s *paymentService) validateAccounts(ctx context.Context, req dto.CreatePaymentRequest) error {
	accountIDs := []string{req.DestinationAccountID, req.OutstandingAccountID}
	for _, wo := range req.WriteOffs {
		accountIDs = append(accountIDs, wo.AccountID)
	}

	seen := make(map[string]struct{}, len(accountIDs))
	for _, accountID := range accountIDs {
		if accountID == "" {
			continue
		}
		if _, ok := seen[accountID]; ok {
			continue
		}
		seen[accountID] = struct{}{}

		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("%w: account '%s' is unknown", apperrors.ErrValidation, accountID)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: account '%s' is inactive", apperrors.ErrValidation, accountID)
		}
	}
	return nil
}

// runCorrector applies the cross-currency balance fix when the created
// payment settles existing open items denominated in another currency.
func (s *paymentService) runCorrector(ctx context.Context, payment domain.Payment, moveLines []domain.MoveLine, settleIDs []string, companyCurrency, paymentCurrency domain.Currency) error {
	sourceLines, err := s.moveLineRepo.FindMoveLinesByIDs(ctx, settleIDs)
	if err != nil {
		return fmt.Errorf("failed to load settled lines: %w", err)
	}

	var liquidityLines, counterpartLines []domain.MoveLine
	for _, line := range moveLines {
		switch line.AccountID {
		case payment.OutstandingAccountID:
			liquidityLines = append(liquidityLines, line)
		case payment.DestinationAccountID:
			counterpartLines = append(counterpartLines, line)
		}
	}

	_, err = s.corrector.FixPaymentBalance(ctx, CorrectorInput{
		PaymentCurrency:  paymentCurrency,
		CompanyCurrency:  companyCurrency,
		Override:         payment.Override(),
		SourceLines:      sourceLines,
		LiquidityLines:   liquidityLines,
		CounterpartLines: counterpartLines,
	})
	return err
}

// ConfirmPayment re-runs the affordability validation and posts the
// payment. The advisory button state never replaces this check.
func (s *paymentService) ConfirmPayment(ctx context.Context, paymentID string, userID string) error {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.State != domain.PaymentDraft {
		return fmt.Errorf("%w: payment %s is not in draft state", apperrors.ErrValidation, paymentID)
	}

	if err := s.validateJournalBalance(ctx, *payment); err != nil {
		return err
	}

	if err := s.paymentRepo.UpdatePaymentState(ctx, paymentID, domain.PaymentPosted, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to post payment: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Payment confirmed", slog.String("payment_id", paymentID))
	return nil
}

// validateJournalBalance fails with InsufficientFundsError when an
// outbound bank/cash payment exceeds the journal's available balance. A
// zero available balance skips the check entirely.
func (s *paymentService) validateJournalBalance(ctx context.Context, payment domain.Payment) error {
	if payment.PaymentType != domain.PaymentOutbound || payment.Amount.IsZero() {
		return nil
	}
	journal, err := s.journalRepo.FindJournalByID(ctx, payment.JournalID)
	if err != nil {
		return err
	}
	if !journal.Type.IsLiquidity() {
		return nil
	}

	balance, err := s.journalBalance(ctx, *journal, payment.Date)
	if err != nil {
		return err
	}
	if balance.IsZero() {
		return nil
	}
	if payment.Amount.GreaterThan(balance) {
		return &apperrors.InsufficientFundsError{
			AttemptedAmount:  payment.Amount,
			AvailableBalance: balance,
		}
	}
	return nil
}

// journalBalance returns the journal's available balance at the given
// date: posted debits minus credits of its default liquidity account, or
// the amount-currency aggregate for journals held in a foreign currency.
func (s *paymentService) journalBalance(ctx context.Context, journal domain.Journal, date time.Time) (decimal.Decimal, error) {
	if !journal.Type.IsLiquidity() || journal.DefaultAccountID == "" {
		return decimal.Zero, nil
	}
	if journal.CurrencyCode != "" && journal.CurrencyCode != s.company.CurrencyCode {
		return s.moveLineRepo.SumAmountCurrency(ctx, journal.DefaultAccountID, date)
	}
	return s.moveLineRepo.SumBalance(ctx, journal.DefaultAccountID, date)
}

// ButtonState computes the gate for one payment.
func (s *paymentService) ButtonState(ctx context.Context, paymentID string) (*dto.PaymentGateResponse, error) {
	states, err := s.ButtonStates(ctx, []string{paymentID})
	if err != nil {
		return nil, err
	}
	state, ok := states[paymentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &state, nil
}

// ButtonStates computes the gate for several payments, aggregating the
// journal balance once per distinct (account, date) pair.
func (s *paymentService) ButtonStates(ctx context.Context, paymentIDs []string) (map[string]dto.PaymentGateResponse, error) {
	payments, err := s.paymentRepo.FindPaymentsByIDs(ctx, paymentIDs)
	if err != nil {
		return nil, err
	}

	journals := make(map[string]domain.Journal)
	for _, payment := range payments {
		if _, ok := journals[payment.JournalID]; ok {
			continue
		}
		journal, err := s.journalRepo.FindJournalByID(ctx, payment.JournalID)
		if err != nil {
			return nil, err
		}
		journals[payment.JournalID] = *journal
	}

	type balanceKey struct {
		accountID string
		date      time.Time
	}
	balances := make(map[balanceKey]decimal.Decimal)

	result := make(map[string]dto.PaymentGateResponse, len(payments))
	for _, payment := range payments {
		journal := journals[payment.JournalID]

		balance := decimal.Zero
		if journal.Type.IsLiquidity() && journal.DefaultAccountID != "" {
			key := balanceKey{accountID: journal.DefaultAccountID, date: payment.Date}
			cached, ok := balances[key]
			if !ok {
				cached, err = s.journalBalance(ctx, journal, payment.Date)
				if err != nil {
					return nil, err
				}
				balances[key] = cached
			}
			balance = cached
		}

		canConfirm := s.canConfirm(payment, journal, balance)
		result[payment.PaymentID] = dto.PaymentGateResponse{
			PaymentID:             payment.PaymentID,
			JournalCurrentBalance: balance,
			CanConfirmPayment:     canConfirm,
			PaymentButtonState:    string(buttonState(payment, canConfirm)),
		}
	}
	return result, nil
}

// canConfirm derives the confirmability predicate: false only for a draft
// outbound payment on a bank/cash journal whose amount exceeds a non-zero
// available balance.
func (s *paymentService) canConfirm(payment domain.Payment, journal domain.Journal, balance decimal.Decimal) bool {
	if payment.PaymentType != domain.PaymentOutbound {
		return true
	}
	if !journal.Type.IsLiquidity() {
		return true
	}
	if payment.Amount.IsZero() || balance.IsZero() {
		return true
	}
	if payment.State != domain.PaymentDraft {
		return true
	}
	return !payment.Amount.GreaterThan(balance)
}

// buttonState maps confirmability to the advisory UI state: blocked for
// outbound payments, a warning for the rest.
func buttonState(payment domain.Payment, canConfirm bool) domain.PaymentButtonState {
	switch {
	case !canConfirm && payment.PaymentType == domain.PaymentOutbound:
		return domain.ButtonDisabled
	case !canConfirm:
		return domain.ButtonWarning
	default:
		return domain.ButtonNormal
	}
}

func (s *paymentService) toPaymentResponse(payment domain.Payment, legs []domain.LineLeg, moveLines []domain.MoveLine) *dto.PaymentResponse {
	journalAmount := decimal.Zero
	if payment.ApplyManualCurrencyExchange {
		journalAmount = payment.ManualCurrencyExchangeRate.Mul(payment.Amount)
	}

	legResponses := make([]dto.LineLegResponse, 0, len(moveLines))
	for i, line := range moveLines {
		role := domain.LegCounterpart
		if i < len(legs) {
			role = legs[i].Role
		}
		legResponses = append(legResponses, dto.ToLineLegResponse(line, role))
	}

	return &dto.PaymentResponse{
		PaymentID:                   payment.PaymentID,
		JournalID:                   payment.JournalID,
		PaymentType:                 string(payment.PaymentType),
		Amount:                      payment.Amount,
		CurrencyCode:                payment.CurrencyCode,
		Date:                        payment.Date,
		State:                       string(payment.State),
		ApplyManualCurrencyExchange: payment.ApplyManualCurrencyExchange,
		ManualCurrencyExchangeRate:  payment.ManualCurrencyExchangeRate,
		ActiveManualCurrencyRate:    payment.ActiveManualCurrencyRate,
		JournalAmount:               journalAmount,
		Legs:                        legResponses,
	}
}
