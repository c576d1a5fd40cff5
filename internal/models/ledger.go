package models

import (
	"time"
)

// Ledger entry types
const (
	EntryTypeDeposit  = "DEPOSIT"
	EntryTypeTransfer = "TRANSFER"
)

// LedgerEntry is one signed movement of value against an account. Debits are
// negative, credits positive. A transfer between two known accounts produces
// two entries sharing one ReferenceID; a transfer to an unresolved recipient
// produces a single entry carrying a free-text Counterparty descriptor.
type LedgerEntry struct {
	ID                    int       `json:"id" db:"id"`
	ReferenceID           string    `json:"reference_id" db:"reference_id"`
	AccountID             int       `json:"account_id" db:"account_id"`
	CounterpartyAccountID *int      `json:"counterparty_account_id,omitempty" db:"counterparty_account_id"`
	Counterparty          string    `json:"counterparty,omitempty" db:"counterparty"`
	EntryType             string    `json:"entry_type" db:"entry_type"`
	Amount                float64   `json:"amount" db:"amount"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
}
