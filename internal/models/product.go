package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FeeType defines how a fee value is interpreted
type FeeType string

const (
	FeeTypePercentage FeeType = "PERCENTAGE"
	FeeTypeFixed      FeeType = "FIXED"
)

// CalculationBase defines what a percentage fee is taken from
type CalculationBase string

const (
	CalculationBasePrincipal CalculationBase = "PRINCIPAL"
)

// FeeConfig describes the service fee or the daily fee of a product. Stored
// as a JSON column and decoded once at the persistence boundary.
type FeeConfig struct {
	Type            FeeType         `json:"type"`
	Value           decimal.Decimal `json:"value"`
	CalculationBase CalculationBase `json:"calculationBase,omitempty"`
	Enabled         bool            `json:"enabled"`
}

// AmountFor resolves the fee against a principal: percentage fees are
// value% of the base, fixed fees are taken verbatim.
func (f *FeeConfig) AmountFor(principal decimal.Decimal) decimal.Decimal {
	if f == nil || !f.Enabled {
		return decimal.Zero
	}
	if f.Type == FeeTypePercentage {
		return principal.Mul(f.Value).Div(decimal.NewFromInt(100))
	}
	return f.Value
}

// PenaltyType defines how a penalty rule value is interpreted
type PenaltyType string

const (
	PenaltyTypeFixed                 PenaltyType = "FIXED"
	PenaltyTypePercentageOfPrincipal PenaltyType = "PERCENTAGE_OF_PRINCIPAL"
)

// PenaltyFrequency defines how often a matched penalty rule charges
type PenaltyFrequency string

const (
	PenaltyFrequencyDaily PenaltyFrequency = "DAILY"
	PenaltyFrequencyOnce  PenaltyFrequency = "ONCE"
)

// PenaltyRule charges a penalty for overdue days inside [FromDay, ToDay]
// counted from the due date. ToDay nil means open-ended. Rules are kept in
// configuration order; the first rule covering a day wins.
type PenaltyRule struct {
	FromDay   int              `json:"fromDay"`
	ToDay     *int             `json:"toDay"`
	Type      PenaltyType      `json:"type"`
	Value     decimal.Decimal  `json:"value"`
	Frequency PenaltyFrequency `json:"frequency"`
}

// Covers reports whether the rule's day range contains the given overdue day.
func (r *PenaltyRule) Covers(day int) bool {
	if day < r.FromDay {
		return false
	}
	return r.ToDay == nil || day <= *r.ToDay
}

// AmountFor resolves the per-charge penalty amount against a principal.
func (r *PenaltyRule) AmountFor(principal decimal.Decimal) decimal.Decimal {
	if r.Type == PenaltyTypePercentageOfPrincipal {
		return principal.Mul(r.Value).Div(decimal.NewFromInt(100))
	}
	return r.Value
}

// EligibilityFilter restricts a product to borrowers whose attributes match
// every key. Values are comma-separated alternatives, matched
// case-insensitively. Stored as a JSON column.
type EligibilityFilter map[string]string

// Matches reports whether the borrower attributes satisfy every filter key.
func (f EligibilityFilter) Matches(attrs BorrowerAttributes) bool {
	for field, allowed := range f {
		got, ok := attrs.Get(field)
		if !ok {
			return false
		}
		matched := false
		for _, want := range strings.Split(allowed, ",") {
			if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// LoanProduct belongs to one provider and carries the fee, penalty and
// eligibility configuration applied to its loans.
type LoanProduct struct {
	ID                   int               `json:"id" db:"id"`
	ProviderID           int               `json:"provider_id" db:"provider_id"`
	Name                 string            `json:"name" db:"name"`
	ServiceFee           *FeeConfig        `json:"service_fee" db:"service_fee"`
	DailyFee             *FeeConfig        `json:"daily_fee" db:"daily_fee"`
	PenaltyRules         []PenaltyRule     `json:"penalty_rules" db:"penalty_rules"`
	EligibilityFilter    EligibilityFilter `json:"eligibility_filter" db:"eligibility_filter"`
	AllowConcurrentLoans bool              `json:"allow_concurrent_loans" db:"allow_concurrent_loans"`
	DurationDays         int               `json:"duration_days" db:"duration_days"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at" db:"updated_at"`
}
