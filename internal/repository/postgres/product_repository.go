package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"lending-service/internal/models"
)

// ProductRepo is a PostgreSQL implementation of the repository.ProductRepository interface
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepo
func NewProductRepository(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, provider_id, name, service_fee, daily_fee, penalty_rules,
             eligibility_filter, allow_concurrent_loans, duration_days, created_at, updated_at`

// GetByID gets a product by ID
func (r *ProductRepo) GetByID(ctx context.Context, id int) (*models.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE id = $1`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetByProviderID gets all products of a provider
func (r *ProductRepo) GetByProviderID(ctx context.Context, providerID int) ([]*models.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE provider_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []*models.LoanProduct
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct decodes a product row. The fee, penalty and filter columns are
// JSON; they are parsed here once so engine logic never sees raw strings.
func (r *ProductRepo) scanProduct(row rowScanner) (*models.LoanProduct, error) {
	product := &models.LoanProduct{}
	var serviceFee, dailyFee, penaltyRules, filter []byte

	err := row.Scan(
		&product.ID,
		&product.ProviderID,
		&product.Name,
		&serviceFee,
		&dailyFee,
		&penaltyRules,
		&filter,
		&product.AllowConcurrentLoans,
		&product.DurationDays,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(serviceFee) > 0 {
		if err := json.Unmarshal(serviceFee, &product.ServiceFee); err != nil {
			return nil, fmt.Errorf("failed to decode service fee config: %w", err)
		}
	}
	if len(dailyFee) > 0 {
		if err := json.Unmarshal(dailyFee, &product.DailyFee); err != nil {
			return nil, fmt.Errorf("failed to decode daily fee config: %w", err)
		}
	}
	if len(penaltyRules) > 0 {
		if err := json.Unmarshal(penaltyRules, &product.PenaltyRules); err != nil {
			return nil, fmt.Errorf("failed to decode penalty rules: %w", err)
		}
	}
	if len(filter) > 0 {
		if err := json.Unmarshal(filter, &product.EligibilityFilter); err != nil {
			return nil, fmt.Errorf("failed to decode eligibility filter: %w", err)
		}
	}

	return product, nil
}

// GetAmountTiers gets the score-to-ceiling tiers of a product
func (r *ProductRepo) GetAmountTiers(ctx context.Context, productID int) ([]*models.LoanAmountTier, error) {
	query := `SELECT id, product_id, from_score, to_score, loan_amount
             FROM loan_amount_tiers WHERE product_id = $1 ORDER BY from_score`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get amount tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*models.LoanAmountTier
	for rows.Next() {
		tier := &models.LoanAmountTier{}
		if err := rows.Scan(&tier.ID, &tier.ProductID, &tier.FromScore, &tier.ToScore, &tier.LoanAmount); err != nil {
			return nil, fmt.Errorf("failed to scan amount tier: %w", err)
		}
		tiers = append(tiers, tier)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate amount tiers: %w", err)
	}

	return tiers, nil
}

// GetCycleConfig gets the cycle limiting configuration of a product, nil when
// none is configured
func (r *ProductRepo) GetCycleConfig(ctx context.Context, productID int) (*models.LoanCycleConfig, error) {
	query := `SELECT id, product_id, metric, cycle_ranges, grades, cycles, enabled
             FROM loan_cycle_configs WHERE product_id = $1`

	cfg := &models.LoanCycleConfig{}
	var ranges, grades, cycles []byte

	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&cfg.ID,
		&cfg.ProductID,
		&cfg.Metric,
		&ranges,
		&grades,
		&cycles,
		&cfg.Enabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cycle config: %w", err)
	}

	if len(ranges) > 0 {
		if err := json.Unmarshal(ranges, &cfg.CycleRanges); err != nil {
			return nil, fmt.Errorf("failed to decode cycle ranges: %w", err)
		}
	}
	if len(grades) > 0 {
		if err := json.Unmarshal(grades, &cfg.Grades); err != nil {
			return nil, fmt.Errorf("failed to decode cycle grades: %w", err)
		}
	}
	if len(cycles) > 0 {
		if err := json.Unmarshal(cycles, &cfg.Cycles); err != nil {
			return nil, fmt.Errorf("failed to decode legacy cycles: %w", err)
		}
	}

	return cfg, nil
}
