package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lending-service/internal/models"
)

// LoanRepo is a PostgreSQL implementation of the repository.LoanRepository interface
type LoanRepo struct {
	db *sql.DB
}

// NewLoanRepository creates a new LoanRepo
func NewLoanRepository(db *sql.DB) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `id, borrower_id, product_id, loan_amount, service_fee, disbursed_date,
             due_date, repayment_status, repaid_amount, penalty_amount, repayment_behavior,
             created_at, updated_at`

// CreateTx creates a new loan within an existing transaction
func (r *LoanRepo) CreateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) (int, error) {
	query := `INSERT INTO loans (borrower_id, product_id, loan_amount, service_fee,
             disbursed_date, due_date, repayment_status, repaid_amount, penalty_amount)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		loan.BorrowerID,
		loan.ProductID,
		loan.LoanAmount,
		loan.ServiceFee,
		loan.DisbursedDate,
		loan.DueDate,
		loan.RepaymentStatus,
		loan.RepaidAmount,
		loan.PenaltyAmount,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create loan: %w", err)
	}

	return id, nil
}

// GetByID gets a loan by ID
func (r *LoanRepo) GetByID(ctx context.Context, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := r.scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

// GetByIDForUpdateTx gets a loan by ID within an existing transaction and
// locks the row until the transaction ends, serializing payments that race
// on the same loan
func (r *LoanRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := r.scanLoan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

// GetByBorrowerID gets all loans of a borrower, oldest first
func (r *LoanRepo) GetByBorrowerID(ctx context.Context, borrowerID int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_id = $1 ORDER BY disbursed_date`

	return r.queryLoans(ctx, query, borrowerID)
}

// GetUnpaidByBorrowerAndProduct gets the borrower's unpaid loans on one product
func (r *LoanRepo) GetUnpaidByBorrowerAndProduct(ctx context.Context, borrowerID, productID int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
             WHERE borrower_id = $1 AND product_id = $2 AND repayment_status = $3`

	return r.queryLoans(ctx, query, borrowerID, productID, models.RepaymentStatusUnpaid)
}

// GetUnpaidByBorrowerAndProvider gets the borrower's unpaid loans across all
// products of one provider
func (r *LoanRepo) GetUnpaidByBorrowerAndProvider(ctx context.Context, borrowerID, providerID int) ([]*models.Loan, error) {
	query := `SELECT l.id, l.borrower_id, l.product_id, l.loan_amount, l.service_fee,
             l.disbursed_date, l.due_date, l.repayment_status, l.repaid_amount,
             l.penalty_amount, l.repayment_behavior, l.created_at, l.updated_at
             FROM loans l
             JOIN loan_products p ON p.id = l.product_id
             WHERE l.borrower_id = $1 AND p.provider_id = $2 AND l.repayment_status = $3`

	return r.queryLoans(ctx, query, borrowerID, providerID, models.RepaymentStatusUnpaid)
}

// GetOverdueByProvider gets the provider's unpaid loans disbursed before the
// given threshold date
func (r *LoanRepo) GetOverdueByProvider(ctx context.Context, providerID int, disbursedBefore time.Time) ([]*models.Loan, error) {
	query := `SELECT l.id, l.borrower_id, l.product_id, l.loan_amount, l.service_fee,
             l.disbursed_date, l.due_date, l.repayment_status, l.repaid_amount,
             l.penalty_amount, l.repayment_behavior, l.created_at, l.updated_at
             FROM loans l
             JOIN loan_products p ON p.id = l.product_id
             WHERE p.provider_id = $1 AND l.repayment_status = $2 AND l.disbursed_date < $3`

	return r.queryLoans(ctx, query, providerID, models.RepaymentStatusUnpaid, disbursedBefore)
}

// UpdateRepaymentTx persists the repayment-side mutations of a loan within an
// existing transaction. Only the fields the payment allocator owns are written.
func (r *LoanRepo) UpdateRepaymentTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) error {
	query := `UPDATE loans SET repaid_amount = $1, penalty_amount = $2, repayment_status = $3,
             repayment_behavior = $4, updated_at = NOW() WHERE id = $5`

	res, err := tx.ExecContext(
		ctx,
		query,
		loan.RepaidAmount,
		loan.PenaltyAmount,
		loan.RepaymentStatus,
		loan.RepaymentBehavior,
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan repayment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrLoanNotFound
	}

	return nil
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...interface{}) ([]*models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := r.scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}

	return loans, nil
}

func (r *LoanRepo) scanLoan(row rowScanner) (*models.Loan, error) {
	loan := &models.Loan{}
	var behavior sql.NullString

	err := row.Scan(
		&loan.ID,
		&loan.BorrowerID,
		&loan.ProductID,
		&loan.LoanAmount,
		&loan.ServiceFee,
		&loan.DisbursedDate,
		&loan.DueDate,
		&loan.RepaymentStatus,
		&loan.RepaidAmount,
		&loan.PenaltyAmount,
		&behavior,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if behavior.Valid {
		b := models.RepaymentBehavior(behavior.String)
		loan.RepaymentBehavior = &b
	}

	return loan, nil
}
