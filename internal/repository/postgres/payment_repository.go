package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lending-service/internal/models"
)

// PaymentRepo is a PostgreSQL implementation of the repository.PaymentRepository interface
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PaymentRepo
func NewPaymentRepository(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// CreateTx records an applied payment within an existing transaction
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error) {
	query := `INSERT INTO payments (loan_id, txn_ref, amount, date,
             outstanding_balance_before_payment, journal_entry_id)
             VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		payment.LoanID,
		payment.TxnRef,
		payment.Amount,
		payment.Date,
		payment.OutstandingBalanceBeforePayment,
		payment.JournalEntryID,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}

	return id, nil
}

// GetByLoanID gets all payments applied to a loan, oldest first
func (r *PaymentRepo) GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error) {
	query := `SELECT id, loan_id, txn_ref, amount, date,
             outstanding_balance_before_payment, journal_entry_id, created_at
             FROM payments WHERE loan_id = $1 ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID,
			&payment.LoanID,
			&payment.TxnRef,
			&payment.Amount,
			&payment.Date,
			&payment.OutstandingBalanceBeforePayment,
			&payment.JournalEntryID,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// CreatePending creates the pending-payment record a gateway callback will
// later claim. The txn_ref column carries a unique constraint.
func (r *PaymentRepo) CreatePending(ctx context.Context, pending *models.PendingPayment) (int, error) {
	query := `INSERT INTO pending_payments (loan_id, txn_ref, status)
             VALUES ($1, $2, $3) RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query, pending.LoanID, pending.TxnRef, pending.Status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create pending payment: %w", err)
	}

	return id, nil
}

// GetPendingByRef gets a pending payment by its external transaction
// reference, nil when unknown
func (r *PaymentRepo) GetPendingByRef(ctx context.Context, txnRef string) (*models.PendingPayment, error) {
	query := `SELECT id, loan_id, txn_ref, status, created_at, updated_at
             FROM pending_payments WHERE txn_ref = $1`

	pending := &models.PendingPayment{}
	err := r.db.QueryRowContext(ctx, query, txnRef).Scan(
		&pending.ID,
		&pending.LoanID,
		&pending.TxnRef,
		&pending.Status,
		&pending.CreatedAt,
		&pending.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}

	return pending, nil
}

// ClaimPendingTx atomically claims a still-pending record within an existing
// transaction. Returns nil when the reference is unknown or already terminal,
// which makes duplicate callback delivery a no-op.
func (r *PaymentRepo) ClaimPendingTx(ctx context.Context, tx *sql.Tx, txnRef string) (*models.PendingPayment, error) {
	query := `UPDATE pending_payments SET updated_at = NOW()
             WHERE txn_ref = $1 AND status = $2
             RETURNING id, loan_id, txn_ref, status, created_at, updated_at`

	pending := &models.PendingPayment{}
	err := tx.QueryRowContext(ctx, query, txnRef, models.PendingPaymentStatusPending).Scan(
		&pending.ID,
		&pending.LoanID,
		&pending.TxnRef,
		&pending.Status,
		&pending.CreatedAt,
		&pending.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim pending payment: %w", err)
	}

	return pending, nil
}

// SetPendingStatusTx moves a pending payment to a terminal status within an
// existing transaction
func (r *PaymentRepo) SetPendingStatusTx(ctx context.Context, tx *sql.Tx, id int, status models.PendingPaymentStatus) error {
	query := `UPDATE pending_payments SET status = $1, updated_at = NOW() WHERE id = $2`

	if _, err := tx.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update pending payment status: %w", err)
	}

	return nil
}
