package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Queryer is the data access surface repositories depend on. *sqlx.DB,
// *sqlx.Tx and *Tx all satisfy it.
type Queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tx is a transaction-scoped handle. A single connection backs the
// transaction, so statements issued from concurrent goroutines (sibling
// relation populaters) are serialized here.
type Tx struct {
	mu sync.Mutex
	tx *sqlx.Tx
}

func (t *Tx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.GetContext(ctx, dest, query, args...)
}

func (t *Tx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.SelectContext(ctx, dest, query, args...)
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx.ExecContext(ctx, query, args...)
}

// TxManager opens one transaction per unit of work.
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTransaction runs fn inside a transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Queryer) error) error {
	stx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &Tx{tx: stx}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := stx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rollbackErr)
		}
		return err
	}

	if err := stx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
