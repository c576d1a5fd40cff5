package store

import (
	"context"

	"github.com/talobank/backend/internal/models"
)

const ledgerColumns = `id, reference_id, account_id, counterparty_account_id, counterparty, entry_type, amount, created_at`

func scanEntry(row interface{ Scan(...any) error }) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(&e.ID, &e.ReferenceID, &e.AccountID, &e.CounterpartyAccountID,
		&e.Counterparty, &e.EntryType, &e.Amount, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RecentEntriesByOwner returns the newest ledger entries across all of a
// party's accounts.
func (s *Store) RecentEntriesByOwner(ctx context.Context, ownerID, limit int) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.reference_id, t.account_id, t.counterparty_account_id,
			t.counterparty, t.entry_type, t.amount, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.owner_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListLedger returns the newest ledger entries across all accounts.
func (s *Store) ListLedger(ctx context.Context, limit int) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM transactions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
