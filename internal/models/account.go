package models

import "time"

// Account holds funds in a single currency.
//
// CreditLimit doubles as the opening balance for credit accounts: the account
// starts at the limit and is "in debt" whenever the balance drops below it.
// Debit accounts carry a zero limit.
type Account struct {
	ID             int       `json:"id" db:"id"`
	OwnerID        int       `json:"owner_id" db:"owner_id"`
	Number         string    `json:"number" db:"number"`
	Currency       string    `json:"currency" db:"currency"`
	CreditLimit    float64   `json:"credit_limit" db:"credit_limit"`
	Balance        float64   `json:"balance" db:"balance"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	LastInterestAt time.Time `json:"last_interest_at" db:"last_interest_at"`
}

// CreditRecord is written by the accrual job each time monthly interest is
// capitalized into an account. Immutable once created.
type CreditRecord struct {
	ID        int       `json:"id" db:"id"`
	AccountID int       `json:"account_id" db:"account_id"`
	Interest  float64   `json:"interest" db:"interest"`
	Total     float64   `json:"total" db:"total"`
	StartedAt time.Time `json:"started_at" db:"started_at"`
	EndsAt    time.Time `json:"ends_at" db:"ends_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
