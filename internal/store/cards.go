package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/talobank/backend/internal/models"
)

const cardColumns = `id, owner_id, account_id, number, cvv, card_type, banned, expires_at, created_at`

func scanCard(row interface{ Scan(...any) error }) (*models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.OwnerID, &c.AccountID, &c.Number, &c.CVV,
		&c.CardType, &c.Banned, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCard inserts a new card and fills in its generated id.
func (s *Store) CreateCard(ctx context.Context, c *models.Card) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cards (owner_id, account_id, number, cvv, card_type, banned, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.OwnerID, c.AccountID, c.Number, c.CVV, c.CardType, c.Banned, c.ExpiresAt, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (s *Store) CardByNumber(ctx context.Context, number string) (*models.Card, error) {
	c, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE number = $1`, number))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

// CardNumberExists backs the identifier generator's collision check.
func (s *Store) CardNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cards WHERE number = $1)`, number).Scan(&exists)
	return exists, err
}

// UpdateCard persists the mutable card flags (banned).
func (s *Store) UpdateCard(ctx context.Context, c *models.Card) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE cards SET banned = $1 WHERE id = $2`, c.Banned, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", c.ID, err)
	}
	return nil
}

func (s *Store) ListCards(ctx context.Context) ([]models.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}
