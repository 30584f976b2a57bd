package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
)

// PgxPaymentRepository implements the ports.PaymentRepository interface using pgxpool.
type PgxPaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository creates a new PgxPaymentRepository.
func NewPaymentRepository(db *pgxpool.Pool) *PgxPaymentRepository {
	return &PgxPaymentRepository{db: db}
}

// SavePayment persists a payment and its balanced legs within a DB transaction.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, legs []domain.LineLeg) ([]domain.MoveLine, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	paymentQuery := `
		INSERT INTO payments (
			payment_id, journal_id, payment_type, partner_id, amount, currency_code, date, reference, state,
			destination_account_id, outstanding_account_id,
			apply_manual_currency_exchange, manual_currency_exchange_rate, active_manual_currency_rate,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = tx.Exec(ctx, paymentQuery,
		payment.PaymentID, payment.JournalID, payment.PaymentType, payment.PartnerID,
		payment.Amount, payment.CurrencyCode, payment.Date, payment.Reference, payment.State,
		payment.DestinationAccountID, payment.OutstandingAccountID,
		payment.ApplyManualCurrencyExchange, payment.ManualCurrencyExchangeRate, payment.ActiveManualCurrencyRate,
		payment.CreatedAt, payment.CreatedBy, payment.LastUpdatedAt, payment.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment %s: %w", payment.PaymentID, err)
	}

	lines, err := insertMoveLines(ctx, tx, payment.PaymentID, payment.Date, legs, moveLineInsertOpts{
		isPaymentLine: true,
		override:      payment.Override(),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction for payment %s: %w", payment.PaymentID, err)
	}
	return lines, nil
}

const paymentColumns = `
	payment_id, journal_id, payment_type, COALESCE(partner_id, ''), amount, currency_code, date,
	COALESCE(reference, ''), state, destination_account_id, COALESCE(outstanding_account_id, ''),
	apply_manual_currency_exchange, manual_currency_exchange_rate, active_manual_currency_rate,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	payment := &domain.Payment{}
	err := row.Scan(
		&payment.PaymentID, &payment.JournalID, &payment.PaymentType, &payment.PartnerID,
		&payment.Amount, &payment.CurrencyCode, &payment.Date,
		&payment.Reference, &payment.State, &payment.DestinationAccountID, &payment.OutstandingAccountID,
		&payment.ApplyManualCurrencyExchange, &payment.ManualCurrencyExchangeRate, &payment.ActiveManualCurrencyRate,
		&payment.CreatedAt, &payment.CreatedBy, &payment.LastUpdatedAt, &payment.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// FindPaymentByID retrieves a payment by its ID.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`
	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by ID %s: %w", paymentID, err)
	}
	return payment, nil
}

// FindPaymentsByIDs retrieves several payments in the order requested.
func (r *PgxPaymentRepository) FindPaymentsByIDs(ctx context.Context, paymentIDs []string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, paymentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	byID := map[string]domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		byID[payment.PaymentID] = *payment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}

	payments := make([]domain.Payment, 0, len(paymentIDs))
	for _, id := range paymentIDs {
		payment, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: payment '%s'", apperrors.ErrNotFound, id)
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// UpdatePaymentState transitions a payment to a new lifecycle state.
func (r *PgxPaymentRepository) UpdatePaymentState(ctx context.Context, paymentID string, state domain.PaymentState, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE payments
		SET state = $2, last_updated_by = $3, last_updated_at = $4
		WHERE payment_id = $1
	`
	tag, err := r.db.Exec(ctx, query, paymentID, state, updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment %s state: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
