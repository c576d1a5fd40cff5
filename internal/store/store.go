// Package store is the Postgres record store behind the conversation engine:
// parties, accounts, cards, ledger entries and credit records.
package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned by every lookup that matches no row.
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for services that manage their own
// transactions (transfer commit, interest accrual).
func (s *Store) DB() *sql.DB {
	return s.db
}
