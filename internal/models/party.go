package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Party is the human principal behind a conversation. One row per external
// identity; created on first contact and never deleted.
type Party struct {
	ID           int           `json:"id" db:"id"`
	ExternalID   string        `json:"external_id" db:"external_id"`
	PhoneNumber  string        `json:"phone_number" db:"phone_number"`
	Email        string        `json:"email" db:"email"`
	FirstName    string        `json:"first_name" db:"first_name"`
	LastName     string        `json:"last_name" db:"last_name"`
	PasswordHash string        `json:"-" db:"password_hash"`
	IsAdmin      bool          `json:"is_admin" db:"is_admin"`
	Banned       bool          `json:"banned" db:"banned"`
	State        string        `json:"state" db:"state"`
	Retries      int           `json:"retries" db:"retries"`
	Draft        TransferDraft `json:"draft" db:"draft"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// TransferDraft carries the fields collected step by step during the transfer
// flow. It is replaced whenever the flow restarts and cleared on completion,
// so it only ever lives as part of the Party row (JSONB column).
type TransferDraft struct {
	SenderCard    string  `json:"sender_card,omitempty"`
	SenderCVV     string  `json:"sender_cvv,omitempty"`
	SenderExpiry  string  `json:"sender_expiry,omitempty"`
	RecipientCard string  `json:"recipient_card,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
}

// Value implements driver.Valuer for TransferDraft
func (d TransferDraft) Value() (driver.Value, error) {
	if d == (TransferDraft{}) {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for TransferDraft
func (d *TransferDraft) Scan(value any) error {
	if value == nil {
		*d = TransferDraft{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, d)
}
