package postgres

import (
	"context"
	"database/sql"
)

// TxManager manages database transactions over a *sql.DB
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// BeginTx begins a new transaction
func (m *TxManager) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return m.db.BeginTx(ctx, nil)
}

// CommitTx commits a transaction
func (m *TxManager) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (m *TxManager) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}
