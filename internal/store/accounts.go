package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/talobank/backend/internal/models"
)

const accountColumns = `id, owner_id, number, currency, credit_limit, balance, created_at, last_interest_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Number, &a.Currency, &a.CreditLimit,
		&a.Balance, &a.CreatedAt, &a.LastInterestAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts a new account and fills in its generated id. The
// unique constraint on number is the backstop for concurrent issuance.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.LastInterestAt.IsZero() {
		a.LastInterestAt = a.CreatedAt
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (owner_id, number, currency, credit_limit, balance, created_at, last_interest_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.OwnerID, a.Number, a.Currency, a.CreditLimit, a.Balance, a.CreatedAt, a.LastInterestAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) AccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// AccountNumberExists backs the identifier generator's collision check.
func (s *Store) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists)
	return exists, err
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
