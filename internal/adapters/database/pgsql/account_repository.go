package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
)

// PgxAccountRepository implements the ports.AccountRepository interface using pgxpool.
type PgxAccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new PgxAccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{db: db}
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, name, account_type, currency_code, COALESCE(description, ''), is_active,
			created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE account_id = $1
	`
	account := &domain.Account{}
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&account.AccountID, &account.Name, &account.AccountType, &account.CurrencyCode, &account.Description, &account.IsActive,
		&account.CreatedAt, &account.CreatedBy, &account.LastUpdatedAt, &account.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return account, nil
}
