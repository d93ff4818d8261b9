package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lending-service/internal/models"
)

// ProviderRepo is a PostgreSQL implementation of the repository.ProviderRepository interface
type ProviderRepo struct {
	db *sql.DB
}

// NewProviderRepository creates a new ProviderRepo
func NewProviderRepository(db *sql.DB) *ProviderRepo {
	return &ProviderRepo{db: db}
}

// GetByID gets a provider by ID
func (r *ProviderRepo) GetByID(ctx context.Context, id int) (*models.LoanProvider, error) {
	query := `SELECT id, name, contact_email, initial_balance, npl_threshold_days, created_at, updated_at
             FROM loan_providers WHERE id = $1`

	provider := &models.LoanProvider{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&provider.ID,
		&provider.Name,
		&provider.ContactEmail,
		&provider.InitialBalance,
		&provider.NPLThresholdDays,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	return provider, nil
}

// GetAll gets all providers
func (r *ProviderRepo) GetAll(ctx context.Context) ([]*models.LoanProvider, error) {
	query := `SELECT id, name, contact_email, initial_balance, npl_threshold_days, created_at, updated_at
             FROM loan_providers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get providers: %w", err)
	}
	defer rows.Close()

	var providers []*models.LoanProvider
	for rows.Next() {
		provider := &models.LoanProvider{}
		err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&provider.ContactEmail,
			&provider.InitialBalance,
			&provider.NPLThresholdDays,
			&provider.CreatedAt,
			&provider.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, provider)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate providers: %w", err)
	}

	return providers, nil
}

// AdjustBalanceTx applies a delta to the provider's capital pool within an
// existing transaction. The update refuses to drive the pool negative, so
// disbursements racing on the same pool cannot jointly overdraw it. Callers
// resolve the provider beforehand; a zero row count means the pool could not
// cover the delta.
func (r *ProviderRepo) AdjustBalanceTx(ctx context.Context, tx *sql.Tx, id int, delta decimal.Decimal) error {
	query := `UPDATE loan_providers SET initial_balance = initial_balance + $1, updated_at = NOW()
             WHERE id = $2 AND initial_balance + $1 >= 0`

	res, err := tx.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust provider balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrInsufficientCapital
	}

	return nil
}

// GetTaxes gets the enabled taxes configured for a provider. The applied_to
// column is a JSON array decoded here, at the persistence boundary.
func (r *ProviderRepo) GetTaxes(ctx context.Context, providerID int) ([]*models.Tax, error) {
	query := `SELECT id, name, rate, applied_to, enabled
             FROM taxes WHERE provider_id = $1 AND enabled = TRUE ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get taxes: %w", err)
	}
	defer rows.Close()

	var taxes []*models.Tax
	for rows.Next() {
		tax := &models.Tax{}
		var appliedTo []byte
		if err := rows.Scan(&tax.ID, &tax.Name, &tax.Rate, &appliedTo, &tax.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan tax: %w", err)
		}
		if err := json.Unmarshal(appliedTo, &tax.AppliedTo); err != nil {
			return nil, fmt.Errorf("failed to decode tax applied_to: %w", err)
		}
		taxes = append(taxes, tax)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate taxes: %w", err)
	}

	return taxes, nil
}
