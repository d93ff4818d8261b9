package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lending-service/internal/models"
)

// ScoringRepo is a PostgreSQL implementation of the repository.ScoringRepository interface
type ScoringRepo struct {
	db *sql.DB
}

// NewScoringRepository creates a new ScoringRepo
func NewScoringRepository(db *sql.DB) *ScoringRepo {
	return &ScoringRepo{db: db}
}

// GetParametersByProvider gets the provider's scoring parameters with their
// rules attached, in configuration order
func (r *ScoringRepo) GetParametersByProvider(ctx context.Context, providerID int) ([]*models.ScoringParameter, error) {
	query := `SELECT id, provider_id, name, weight, created_at
             FROM scoring_parameters WHERE provider_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring parameters: %w", err)
	}
	defer rows.Close()

	var params []*models.ScoringParameter
	paramsByID := map[int]*models.ScoringParameter{}
	for rows.Next() {
		p := &models.ScoringParameter{}
		if err := rows.Scan(&p.ID, &p.ProviderID, &p.Name, &p.Weight, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scoring parameter: %w", err)
		}
		params = append(params, p)
		paramsByID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scoring parameters: %w", err)
	}

	if len(params) == 0 {
		return nil, nil
	}

	ruleQuery := `SELECT r.id, r.parameter_id, r.field, r.condition, r.value, r.score
             FROM scoring_rules r
             JOIN scoring_parameters p ON p.id = r.parameter_id
             WHERE p.provider_id = $1 ORDER BY r.parameter_id, r.id`

	ruleRows, err := r.db.QueryContext(ctx, ruleQuery, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring rules: %w", err)
	}
	defer ruleRows.Close()

	for ruleRows.Next() {
		rule := models.ScoringRule{}
		if err := ruleRows.Scan(&rule.ID, &rule.ParameterID, &rule.Field, &rule.Condition, &rule.Value, &rule.Score); err != nil {
			return nil, fmt.Errorf("failed to scan scoring rule: %w", err)
		}
		if p, ok := paramsByID[rule.ParameterID]; ok {
			p.Rules = append(p.Rules, rule)
		}
	}
	if err := ruleRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scoring rules: %w", err)
	}

	return params, nil
}
