package db

import (
	"context"
	"fmt"

	"storekeep/tracker"
)

// schema is applied on every Open; each statement must stay idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY,
		name TEXT,
		email TEXT,
		phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER REFERENCES customers(id),
		product TEXT,
		amount REAL,
		date TEXT
	)`,
}

// Migrate creates the customers and orders tables if they are missing.
// Existing tables and rows are left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	uow := tracker.New(s.db)
	for _, stmt := range schema {
		uow.Do(func(tx tracker.Tx) error {
			_, err := tx.Exec(stmt)
			return err
		})
	}
	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
