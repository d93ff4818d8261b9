package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"lending-service/internal/models"
)

// BorrowerRepo is a PostgreSQL implementation of the repository.BorrowerRepository interface
type BorrowerRepo struct {
	db *sql.DB
}

// NewBorrowerRepository creates a new BorrowerRepo
func NewBorrowerRepository(db *sql.DB) *BorrowerRepo {
	return &BorrowerRepo{db: db}
}

// Create creates a new borrower in the database
func (r *BorrowerRepo) Create(ctx context.Context, borrower *models.Borrower) (int, error) {
	query := `INSERT INTO borrowers (external_key, full_name, phone_number, status)
             VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		borrower.ExternalKey,
		borrower.FullName,
		borrower.PhoneNumber,
		borrower.Status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create borrower: %w", err)
	}

	return id, nil
}

// GetByID gets a borrower by ID
func (r *BorrowerRepo) GetByID(ctx context.Context, id int) (*models.Borrower, error) {
	query := `SELECT id, external_key, full_name, phone_number, status, created_at, updated_at
             FROM borrowers WHERE id = $1`

	borrower := &models.Borrower{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&borrower.ID,
		&borrower.ExternalKey,
		&borrower.FullName,
		&borrower.PhoneNumber,
		&borrower.Status,
		&borrower.CreatedAt,
		&borrower.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}

	return borrower, nil
}

// GetAttributes gets the provisioned attribute rows of a borrower as a
// normalized key/value map
func (r *BorrowerRepo) GetAttributes(ctx context.Context, borrowerID int) (models.BorrowerAttributes, error) {
	query := `SELECT field, value FROM borrower_attributes WHERE borrower_id = $1`

	rows, err := r.db.QueryContext(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrower attributes: %w", err)
	}
	defer rows.Close()

	attrs := models.BorrowerAttributes{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan borrower attribute: %w", err)
		}
		attrs.Set(field, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate borrower attributes: %w", err)
	}

	return attrs, nil
}

// FlagNonPerformingTx bulk-flags borrowers as non-performing within an existing
// transaction, skipping those already flagged. Returns the number updated.
func (r *BorrowerRepo) FlagNonPerformingTx(ctx context.Context, tx *sql.Tx, borrowerIDs []int) (int, error) {
	if len(borrowerIDs) == 0 {
		return 0, nil
	}

	query := `UPDATE borrowers SET status = $1, updated_at = NOW()
             WHERE id = ANY($2) AND status <> $1`

	res, err := tx.ExecContext(ctx, query, models.BorrowerStatusNPL, pq.Array(borrowerIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to flag borrowers: %w", err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return int(updated), nil
}
