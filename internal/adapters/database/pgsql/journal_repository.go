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

// PgxJournalRepository implements the ports.JournalRepository interface using pgxpool.
type PgxJournalRepository struct {
	db *pgxpool.Pool
}

// NewJournalRepository creates a new PgxJournalRepository.
func NewJournalRepository(db *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{db: db}
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `
		SELECT journal_id, name, type, COALESCE(default_account_id, ''), COALESCE(currency_code, ''),
			created_at, created_by, last_updated_at, last_updated_by
		FROM journals
		WHERE journal_id = $1
	`
	journal := &domain.Journal{}
	err := r.db.QueryRow(ctx, query, journalID).Scan(
		&journal.JournalID, &journal.Name, &journal.Type, &journal.DefaultAccountID, &journal.CurrencyCode,
		&journal.CreatedAt, &journal.CreatedBy, &journal.LastUpdatedAt, &journal.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}
	return journal, nil
}
