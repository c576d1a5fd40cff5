package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/talobank/backend/internal/models"
)

const partyColumns = `id, external_id, phone_number, email, first_name, last_name,
		password_hash, is_admin, banned, state, retries, draft, created_at, updated_at`

func scanParty(row interface{ Scan(...any) error }) (*models.Party, error) {
	var p models.Party
	err := row.Scan(&p.ID, &p.ExternalID, &p.PhoneNumber, &p.Email, &p.FirstName,
		&p.LastName, &p.PasswordHash, &p.IsAdmin, &p.Banned, &p.State,
		&p.Retries, &p.Draft, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateParty inserts a new party and fills in its generated id.
func (s *Store) CreateParty(ctx context.Context, p *models.Party) error {
	now := time.Now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO parties (external_id, phone_number, email, first_name, last_name,
			password_hash, is_admin, banned, state, retries, draft, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id`,
		p.ExternalID, p.PhoneNumber, p.Email, p.FirstName, p.LastName,
		p.PasswordHash, p.IsAdmin, p.Banned, p.State, p.Retries, p.Draft, now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create party: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// PartyByExternalID looks a party up by its messaging identity.
func (s *Store) PartyByExternalID(ctx context.Context, externalID string) (*models.Party, error) {
	p, err := scanParty(s.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE external_id = $1`, externalID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// PartyByPhone looks a party up by phone number (admin login).
func (s *Store) PartyByPhone(ctx context.Context, phone string) (*models.Party, error) {
	p, err := scanParty(s.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE phone_number = $1`, phone))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// UpdateParty persists every mutable party field, including the conversation
// state, retry counter and transfer draft.
func (s *Store) UpdateParty(ctx context.Context, p *models.Party) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE parties
		SET phone_number = $1, email = $2, first_name = $3, last_name = $4,
			password_hash = $5, is_admin = $6, banned = $7, state = $8,
			retries = $9, draft = $10, updated_at = $11
		WHERE id = $12`,
		p.PhoneNumber, p.Email, p.FirstName, p.LastName, p.PasswordHash,
		p.IsAdmin, p.Banned, p.State, p.Retries, p.Draft, time.Now(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update party %d: %w", p.ID, err)
	}
	return nil
}

// ListParties returns every registered party, newest first.
func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+partyColumns+` FROM parties ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}
