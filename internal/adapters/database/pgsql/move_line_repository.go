package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// pgxQuerier is the subset of pgx operations shared by *pgxpool.Pool and
// pgx.Tx, so that the leg insert helper works inside and outside a
// transaction.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PgxMoveLineRepository implements the ports.MoveLineRepository interface using pgxpool.
type PgxMoveLineRepository struct {
	db *pgxpool.Pool
}

// NewMoveLineRepository creates a new PgxMoveLineRepository.
func NewMoveLineRepository(db *pgxpool.Pool) *PgxMoveLineRepository {
	return &PgxMoveLineRepository{db: db}
}

// moveLineInsertOpts carries the move-level flags denormalized onto each line.
type moveLineInsertOpts struct {
	isPaymentLine bool
	override      domain.RateOverride
}

// insertMoveLines queues one insert per leg on a pgx batch and returns the
// created line snapshots. Residual amounts start equal to the full signed
// amounts.
func insertMoveLines(ctx context.Context, q pgxQuerier, moveID string, date time.Time, legs []domain.LineLeg, opts moveLineInsertOpts) ([]domain.MoveLine, error) {
	query := `
		INSERT INTO move_lines (
			move_line_id, move_id, name, account_id, partner_id, date, date_maturity, currency_code,
			amount_currency, balance, debit, credit, amount_residual, amount_residual_currency,
			is_payment_line, apply_manual_currency_exchange, manual_currency_exchange_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	batch := &pgx.Batch{}
	lines := make([]domain.MoveLine, 0, len(legs))
	for _, leg := range legs {
		line := domain.MoveLine{
			MoveLineID:                  uuid.NewString(),
			MoveID:                      moveID,
			Name:                        leg.Name,
			AccountID:                   leg.AccountID,
			PartnerID:                   leg.PartnerID,
			Date:                        date,
			DateMaturity:                leg.DateMaturity,
			CurrencyCode:                leg.CurrencyCode,
			AmountCurrency:              leg.AmountCurrency,
			Balance:                     leg.Balance,
			Debit:                       leg.Debit,
			Credit:                      leg.Credit,
			AmountResidual:              leg.Balance,
			AmountResidualCurrency:      leg.AmountCurrency,
			IsPaymentLine:               opts.isPaymentLine,
			ApplyManualCurrencyExchange: opts.override.Apply,
			ManualCurrencyExchangeRate:  opts.override.Rate,
		}
		batch.Queue(query,
			line.MoveLineID, line.MoveID, line.Name, line.AccountID, line.PartnerID, line.Date, line.DateMaturity, line.CurrencyCode,
			line.AmountCurrency, line.Balance, line.Debit, line.Credit, line.AmountResidual, line.AmountResidualCurrency,
			line.IsPaymentLine, line.ApplyManualCurrencyExchange, line.ManualCurrencyExchangeRate,
		)
		lines = append(lines, line)
	}

	br := q.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to execute move line batch for move %s: %w", moveID, err)
	}

	if err := fillAccountTypes(ctx, q, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// fillAccountTypes populates the denormalized account type on freshly
// inserted line snapshots.
func fillAccountTypes(ctx context.Context, q pgxQuerier, lines []domain.MoveLine) error {
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	rows, err := q.Query(ctx, `SELECT account_id, account_type FROM accounts WHERE account_id = ANY($1)`, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to load account types: %w", err)
	}
	defer rows.Close()

	types := map[string]domain.AccountType{}
	for rows.Next() {
		var accountID string
		var accountType domain.AccountType
		if err := rows.Scan(&accountID, &accountType); err != nil {
			return fmt.Errorf("failed to scan account type row: %w", err)
		}
		types[accountID] = accountType
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating account type rows: %w", err)
	}
	for i := range lines {
		lines[i].AccountType = types[lines[i].AccountID]
	}
	return nil
}

// SaveMoveLines persists the balanced legs of a general move.
func (r *PgxMoveLineRepository) SaveMoveLines(ctx context.Context, moveID string, date time.Time, legs []domain.LineLeg) ([]domain.MoveLine, error) {
	return insertMoveLines(ctx, r.db, moveID, date, legs, moveLineInsertOpts{})
}

const moveLineColumns = `
	ml.move_line_id, ml.move_id, ml.name, ml.account_id, a.account_type, COALESCE(ml.partner_id, ''),
	ml.date, ml.date_maturity, ml.currency_code,
	ml.amount_currency, ml.balance, ml.debit, ml.credit, ml.amount_residual, ml.amount_residual_currency,
	ml.is_payment_line, ml.is_invoice, ml.invoice_date,
	ml.apply_manual_currency_exchange, ml.manual_currency_exchange_rate
`

func scanMoveLine(row pgx.Row) (*domain.MoveLine, error) {
	line := &domain.MoveLine{}
	err := row.Scan(
		&line.MoveLineID, &line.MoveID, &line.Name, &line.AccountID, &line.AccountType, &line.PartnerID,
		&line.Date, &line.DateMaturity, &line.CurrencyCode,
		&line.AmountCurrency, &line.Balance, &line.Debit, &line.Credit, &line.AmountResidual, &line.AmountResidualCurrency,
		&line.IsPaymentLine, &line.IsInvoice, &line.InvoiceDate,
		&line.ApplyManualCurrencyExchange, &line.ManualCurrencyExchangeRate,
	)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// FindMoveLineByID retrieves a single move line with its account type.
func (r *PgxMoveLineRepository) FindMoveLineByID(ctx context.Context, moveLineID string) (*domain.MoveLine, error) {
	query := `
		SELECT ` + moveLineColumns + `
		FROM move_lines ml
		JOIN accounts a ON a.account_id = ml.account_id
		WHERE ml.move_line_id = $1
	`
	line, err := scanMoveLine(r.db.QueryRow(ctx, query, moveLineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find move line by ID %s: %w", moveLineID, err)
	}
	return line, nil
}

// FindMoveLinesByIDs retrieves several move lines in the order requested.
func (r *PgxMoveLineRepository) FindMoveLinesByIDs(ctx context.Context, moveLineIDs []string) ([]domain.MoveLine, error) {
	query := `
		SELECT ` + moveLineColumns + `
		FROM move_lines ml
		JOIN accounts a ON a.account_id = ml.account_id
		WHERE ml.move_line_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, moveLineIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query move lines: %w", err)
	}
	defer rows.Close()

	byID := map[string]domain.MoveLine{}
	for rows.Next() {
		line, err := scanMoveLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move line row: %w", err)
		}
		byID[line.MoveLineID] = *line
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating move line rows: %w", err)
	}

	lines := make([]domain.MoveLine, 0, len(moveLineIDs))
	for _, id := range moveLineIDs {
		line, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: move line '%s'", apperrors.ErrNotFound, id)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// SumBalance returns the posted debit minus credit total of an account up to
// the cutoff date. Lines of draft payments are excluded.
func (r *PgxMoveLineRepository) SumBalance(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	return r.sumColumn(ctx, "ml.debit - ml.credit", accountID, cutoff)
}

// SumAmountCurrency aggregates the foreign-currency amounts instead of the
// company-currency balances.
func (r *PgxMoveLineRepository) SumAmountCurrency(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	return r.sumColumn(ctx, "ml.amount_currency", accountID, cutoff)
}

func (r *PgxMoveLineRepository) sumColumn(ctx context.Context, expr, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(` + expr + `), 0)
		FROM move_lines ml
		LEFT JOIN payments p ON p.payment_id = ml.move_id
		WHERE ml.account_id = $1 AND ml.date <= $2
			AND (p.payment_id IS NULL OR p.state = 'POSTED')
	`
	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, query, accountID, cutoff).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum move lines for account %s: %w", accountID, err)
	}
	return total, nil
}

// AdjustDebitCredit overwrites one line's debit and another's credit in a
// single transaction, keeping each line's balance in sync.
func (r *PgxMoveLineRepository) AdjustDebitCredit(ctx context.Context, debitLineID string, newDebit decimal.Decimal, creditLineID string, newCredit decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE move_lines SET debit = $2, balance = $2 - credit, amount_residual = $2 - credit
		WHERE move_line_id = $1
	`, debitLineID, newDebit)
	if err != nil {
		return fmt.Errorf("failed to update debit on line %s: %w", debitLineID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: move line '%s'", apperrors.ErrNotFound, debitLineID)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE move_lines SET credit = $2, balance = debit - $2, amount_residual = debit - $2
		WHERE move_line_id = $1
	`, creditLineID, newCredit)
	if err != nil {
		return fmt.Errorf("failed to update credit on line %s: %w", creditLineID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: move line '%s'", apperrors.ErrNotFound, creditLineID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit debit/credit adjustment: %w", err)
	}
	return nil
}
