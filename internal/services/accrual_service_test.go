package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/talobank/backend/internal/config"
)

const debtScanQuery = `SELECT id, number, credit_limit, balance, created_at, last_interest_at FROM accounts WHERE balance < credit_limit`

func debtRows(id int, number string, limit, balance float64, created, lastInterest time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "number", "credit_limit", "balance", "created_at", "last_interest_at"}).
		AddRow(id, number, limit, balance, created, lastInterest)
}

func TestAccrualService_CapitalizesMonthlyInterest(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cfg := config.LoadEngineConfig()
	svc := NewAccrualService(db, cfg)

	now := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	created := now.AddDate(0, -3, 0)
	lastInterest := now.AddDate(0, -1, -2)
	limit, balance := 10000.0, 8000.0
	debt := limit - balance
	interest := debt * cfg.MonthlyInterestRate

	mock.ExpectQuery(debtScanQuery).
		WillReturnRows(debtRows(1, "2601234565", limit, balance, created, lastInterest))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT balance FROM accounts WHERE id = \$1 FOR UPDATE`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(balance))
	mock.ExpectExec(`INSERT INTO credits`).
		WithArgs(1, interest, debt+interest, created, now.AddDate(0, 1, 0), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE accounts SET balance = \$1, last_interest_at = \$2 WHERE id = \$3`).
		WithArgs(balance-interest, now, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, svc.Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrualService_SkipsWithinTheSameMonth(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewAccrualService(db, config.LoadEngineConfig())

	now := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Interest ran ten days ago; a daily tick lands here repeatedly and must
	// not touch the account again until a full month elapses.
	mock.ExpectQuery(debtScanQuery).
		WillReturnRows(debtRows(1, "2601234565", 10000, 8000, now.AddDate(0, -3, 0), now.AddDate(0, 0, -10)))

	assert.NoError(t, svc.Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrualService_FreshAccountWaitsAFullMonth(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewAccrualService(db, config.LoadEngineConfig())

	now := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	created := now.AddDate(0, 0, -5)
	mock.ExpectQuery(debtScanQuery).
		WillReturnRows(debtRows(1, "2601234565", 10000, 9500, created, created))

	assert.NoError(t, svc.Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrualService_DebtClearedByLockTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewAccrualService(db, config.LoadEngineConfig())

	now := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// A repayment landed between the scan and the lock: no interest, but the
	// check date still advances.
	mock.ExpectQuery(debtScanQuery).
		WillReturnRows(debtRows(1, "2601234565", 10000, 8000, now.AddDate(0, -3, 0), now.AddDate(0, -2, 0)))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT balance FROM accounts WHERE id = \$1 FOR UPDATE`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(10000.0))
	mock.ExpectExec(`UPDATE accounts SET balance = \$1, last_interest_at = \$2 WHERE id = \$3`).
		WithArgs(10000.0, now, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, svc.Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
