package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/talobank/backend/internal/config"
)

// AccrualService applies simple monthly interest to accounts in debt
// (balance below the credit limit). The elapsed-calendar-month guard makes
// a coarse daily tick idempotent: re-running within the same month is a no-op.
type AccrualService struct {
	db    *sql.DB
	cfg   *config.EngineConfig
	audit *AuditLogger
	now   func() time.Time
}

func NewAccrualService(db *sql.DB, cfg *config.EngineConfig) *AccrualService {
	return &AccrualService{
		db:    db,
		cfg:   cfg,
		audit: NewAuditLogger(),
		now:   time.Now,
	}
}

type debtAccount struct {
	ID             int
	Number         string
	CreditLimit    float64
	Balance        float64
	CreatedAt      time.Time
	LastInterestAt time.Time
}

// RunLoop runs the accrual scan on a fixed interval until ctx is cancelled.
func (s *AccrualService) RunLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Run(ctx); err != nil {
			log.Printf("[ACCRUAL] Scan failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Run performs one scan over all accounts in debt.
func (s *AccrualService) Run(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, credit_limit, balance, created_at, last_interest_at
		FROM accounts
		WHERE balance < credit_limit`)
	if err != nil {
		return fmt.Errorf("debt scan failed: %w", err)
	}
	defer rows.Close()

	var accounts []debtAccount
	for rows.Next() {
		var a debtAccount
		if err := rows.Scan(&a.ID, &a.Number, &a.CreditLimit, &a.Balance, &a.CreatedAt, &a.LastInterestAt); err != nil {
			return err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, a := range accounts {
		if err := s.accrue(ctx, a); err != nil {
			log.Printf("[ACCRUAL] Account %s: %v", a.Number, err)
		}
	}
	return nil
}

// accrue capitalizes one month of interest into a single account. The locked
// re-read inside the transaction guards against a concurrent transfer
// mutating the balance between scan and update.
func (s *AccrualService) accrue(ctx context.Context, a debtAccount) error {
	now := s.now()

	since := a.LastInterestAt
	if a.CreatedAt.After(since) {
		since = a.CreatedAt
	}
	if now.Before(since.AddDate(0, 1, 0)) {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var balance float64
	if err := tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, a.ID).Scan(&balance); err != nil {
		return err
	}

	debt := a.CreditLimit - balance
	if debt > 0 {
		interest := debt * s.cfg.MonthlyInterestRate
		balance -= interest

		_, err = tx.ExecContext(ctx, `
			INSERT INTO credits (account_id, interest, total, started_at, ends_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, interest, debt+interest, a.CreatedAt, now.AddDate(0, 1, 0), now)
		if err != nil {
			return err
		}

		s.audit.LogAccrual(a.Number, interest)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, last_interest_at = $2 WHERE id = $3`,
		balance, now, a.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
