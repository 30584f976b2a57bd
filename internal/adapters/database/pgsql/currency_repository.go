package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
)

// PgxCurrencyRepository implements the ports.CurrencyRepository interface using pgxpool.
type PgxCurrencyRepository struct {
	db *pgxpool.Pool
}

// NewCurrencyRepository creates a new PgxCurrencyRepository.
func NewCurrencyRepository(db *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{db: db}
}

// SaveCurrency inserts a new currency into the database.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (
			currency_code, symbol, name, precision,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		currency.CurrencyCode, currency.Symbol, currency.Name, currency.Precision,
		currency.CreatedAt, currency.CreatedBy, currency.LastUpdatedAt, currency.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: currency '%s' already exists", apperrors.ErrDuplicate, currency.CurrencyCode)
		}
		return fmt.Errorf("error inserting currency %s: %w", currency.CurrencyCode, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `
		SELECT currency_code, symbol, name, precision,
			created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		WHERE currency_code = $1
	`
	currency := &domain.Currency{}
	err := r.db.QueryRow(ctx, query, code).Scan(
		&currency.CurrencyCode, &currency.Symbol, &currency.Name, &currency.Precision,
		&currency.CreatedAt, &currency.CreatedBy, &currency.LastUpdatedAt, &currency.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding currency %s: %w", code, err)
	}
	return currency, nil
}

// ListCurrencies retrieves all currencies ordered by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT currency_code, symbol, name, precision,
			created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		ORDER BY currency_code
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing currencies: %w", err)
	}
	defer rows.Close()

	currencies := []domain.Currency{}
	for rows.Next() {
		var currency domain.Currency
		if err := rows.Scan(
			&currency.CurrencyCode, &currency.Symbol, &currency.Name, &currency.Precision,
			&currency.CreatedAt, &currency.CreatedBy, &currency.LastUpdatedAt, &currency.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("error scanning currency row: %w", err)
		}
		currencies = append(currencies, currency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency rows: %w", err)
	}
	return currencies, nil
}
