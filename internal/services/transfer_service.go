package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talobank/backend/internal/models"
)

// RateSource converts between currencies; implemented by RatesService.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// TransferResult is the terminal outcome of one transfer attempt. OK is false
// for business rejections; Message is always sent to the party verbatim.
type TransferResult struct {
	OK      bool
	Message string
}

func rejected(format string, args ...any) *TransferResult {
	return &TransferResult{OK: false, Message: fmt.Sprintf(format, args...)}
}

// TransferService validates a collected transfer draft, converts currency and
// posts the paired ledger entries atomically.
type TransferService struct {
	db    *sql.DB
	rates RateSource
	audit *AuditLogger
}

func NewTransferService(db *sql.DB, rates RateSource) *TransferService {
	return &TransferService{
		db:    db,
		rates: rates,
		audit: NewAuditLogger(),
	}
}

// senderCard is a card row joined with its linked account.
type senderCard struct {
	CardID        int
	AccountID     int
	CVV           string
	Banned        bool
	ExpiresAt     time.Time
	AccountNumber string
	Currency      string
	Balance       float64
}

// ParseAmount parses user input as a positive, finite decimal amount.
func (s *TransferService) ParseAmount(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	amount, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// Execute runs the transfer end to end: sender validation, recipient
// resolution, currency conversion and the atomic commit. The returned result
// is always terminal; a non-nil error means infrastructure failure and no
// outcome was reached.
func (s *TransferService) Execute(ctx context.Context, draft models.TransferDraft, amount float64) (*TransferResult, error) {
	sender, err := s.cardByNumber(ctx, draft.SenderCard)
	if err == sql.ErrNoRows {
		return rejected("Your card was not found. Check the number and try again."), nil
	}
	if err != nil {
		return nil, err
	}

	if res := validateSender(sender, draft, amount); res != nil {
		log.Printf("[TRANSFER] Rejected for card ****%s: %s", last4(draft.SenderCard), res.Message)
		return res, nil
	}

	// Recipient resolution: an unknown card number means an external
	// recipient, the transfer still proceeds against sender funds.
	recipient, err := s.cardByNumber(ctx, draft.RecipientCard)
	external := err == sql.ErrNoRows
	if err != nil && !external {
		return nil, err
	}

	converted := amount
	if !external && recipient.Currency != sender.Currency {
		rate, err := s.rates.Rate(ctx, sender.Currency, recipient.Currency)
		if err != nil {
			return rejected("Exchange rates are unavailable right now, try again later."), nil
		}
		converted = amount * rate
	}

	var recipientPtr *senderCard
	if !external {
		recipientPtr = recipient
	}

	ref, res, err := s.commit(ctx, sender, recipientPtr, amount, converted, draft)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	toDesc := draft.RecipientCard
	if !external {
		toDesc = recipient.AccountNumber
	}
	s.audit.LogTransfer(ref, sender.AccountNumber, toDesc, amount, "SUCCESS")

	return &TransferResult{
		OK:      true,
		Message: fmt.Sprintf("Sent %.2f %s to card %s.", amount, sender.Currency, draft.RecipientCard),
	}, nil
}

// validateSender checks the drafted credentials against the stored card.
// A nil result means the sender is valid.
func validateSender(sender *senderCard, draft models.TransferDraft, amount float64) *TransferResult {
	if sender.Banned {
		return rejected("This card is blocked.")
	}
	if sender.CVV != draft.SenderCVV {
		return rejected("Card verification failed: wrong CVV.")
	}

	expiry, err := time.Parse("2006-01-02", strings.TrimSpace(draft.SenderExpiry))
	if err != nil || expiry.Format("2006-01-02") != sender.ExpiresAt.Format("2006-01-02") {
		return rejected("Card verification failed: wrong expiry date.")
	}

	if sender.Balance < amount {
		return rejected("Insufficient funds on your card.")
	}
	return nil
}

// commit debits the sender, credits the recipient (when one resolved) and
// writes the ledger entries, all in one transaction. The balance check is
// repeated on the locked rows so a concurrent spend cannot overdraw.
func (s *TransferService) commit(ctx context.Context, sender, recipient *senderCard, amount, converted float64, draft models.TransferDraft) (string, *TransferResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	// Lock accounts in ascending id order to prevent deadlocks. A transfer
	// onto the sender's own card locks its single account once.
	lockOrder := []int{sender.AccountID}
	if recipient != nil && recipient.AccountID != sender.AccountID {
		if recipient.AccountID < sender.AccountID {
			lockOrder = []int{recipient.AccountID, sender.AccountID}
		} else {
			lockOrder = []int{sender.AccountID, recipient.AccountID}
		}
	}

	balances := make(map[int]float64, len(lockOrder))
	for _, id := range lockOrder {
		var balance float64
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&balance)
		if err != nil {
			return "", nil, err
		}
		balances[id] = balance
	}

	if balances[sender.AccountID] < amount {
		return "", rejected("Insufficient funds on your card."), nil
	}

	// Track running balances through the map so the credit lands on the
	// post-debit balance when both legs hit the same account.
	balances[sender.AccountID] -= amount
	if err := updateBalance(ctx, tx, sender.AccountID, balances[sender.AccountID]); err != nil {
		return "", nil, err
	}
	if recipient != nil {
		balances[recipient.AccountID] += converted
		if err := updateBalance(ctx, tx, recipient.AccountID, balances[recipient.AccountID]); err != nil {
			return "", nil, err
		}
	}

	ref := uuid.NewString()
	now := time.Now()

	if recipient != nil {
		err = insertEntry(ctx, tx, ref, sender.AccountID, &recipient.AccountID, "", models.EntryTypeTransfer, -amount, now)
	} else {
		err = insertEntry(ctx, tx, ref, sender.AccountID, nil, draft.RecipientCard, models.EntryTypeTransfer, -amount, now)
	}
	if err != nil {
		return "", nil, err
	}

	if recipient != nil {
		if err := insertEntry(ctx, tx, ref, recipient.AccountID, &sender.AccountID, "", models.EntryTypeDeposit, converted, now); err != nil {
			return "", nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", nil, err
	}
	return ref, nil, nil
}

func (s *TransferService) cardByNumber(ctx context.Context, number string) (*senderCard, error) {
	var c senderCard
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.account_id, c.cvv, c.banned, c.expires_at, a.number, a.currency, a.balance
		FROM cards c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.number = $1`, number,
	).Scan(&c.CardID, &c.AccountID, &c.CVV, &c.Banned, &c.ExpiresAt,
		&c.AccountNumber, &c.Currency, &c.Balance)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func updateBalance(ctx context.Context, tx *sql.Tx, accountID int, balance float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1 WHERE id = $2`, balance, accountID)
	return err
}

func insertEntry(ctx context.Context, tx *sql.Tx, ref string, accountID int, counterpartyID *int, counterparty, entryType string, amount float64, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (reference_id, account_id, counterparty_account_id, counterparty, entry_type, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ref, accountID, counterpartyID, counterparty, entryType, amount, at)
	return err
}

func last4(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
