package models

import "time"

// Card types
const (
	CardTypeDebit  = "DEBIT"
	CardTypeCredit = "CREDIT"
)

// Card is linked to exactly one account; every currency operation on a card
// resolves through that account.
type Card struct {
	ID        int       `json:"id" db:"id"`
	OwnerID   int       `json:"owner_id" db:"owner_id"`
	AccountID int       `json:"account_id" db:"account_id"`
	Number    string    `json:"number" db:"number"`
	CVV       string    `json:"-" db:"cvv"`
	CardType  string    `json:"card_type" db:"card_type"`
	Banned    bool      `json:"banned" db:"banned"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
