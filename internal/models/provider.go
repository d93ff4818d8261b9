package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanProvider is a capital pool plus its lending configuration.
type LoanProvider struct {
	ID               int             `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	ContactEmail     string          `json:"contact_email" db:"contact_email"`
	InitialBalance   decimal.Decimal `json:"initial_balance" db:"initial_balance"`
	NPLThresholdDays int             `json:"npl_threshold_days" db:"npl_threshold_days"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// TaxComponent names an accrual component a tax may apply to.
type TaxComponent string

const (
	TaxOnServiceFee TaxComponent = "SERVICE_FEE"
	TaxOnInterest   TaxComponent = "INTEREST"
	TaxOnPenalty    TaxComponent = "PENALTY"
)

// Tax is a percentage levy on one or more accrual components.
type Tax struct {
	ID        int             `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Rate      decimal.Decimal `json:"rate" db:"rate"` // percent
	AppliedTo []TaxComponent  `json:"applied_to" db:"applied_to"`
	Enabled   bool            `json:"enabled" db:"enabled"`
}

// AppliesTo reports whether the tax covers the given component.
func (t *Tax) AppliesTo(c TaxComponent) bool {
	if !t.Enabled {
		return false
	}
	for _, ac := range t.AppliedTo {
		if ac == c {
			return true
		}
	}
	return false
}
