package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RuleCondition is the comparison operator of a scoring rule
type RuleCondition string

const (
	ConditionEquals             RuleCondition = "EQUALS"
	ConditionNotEquals          RuleCondition = "NOT_EQUALS"
	ConditionGreaterThan        RuleCondition = "GREATER_THAN"
	ConditionGreaterThanOrEqual RuleCondition = "GREATER_THAN_OR_EQUAL"
	ConditionLessThan           RuleCondition = "LESS_THAN"
	ConditionLessThanOrEqual    RuleCondition = "LESS_THAN_OR_EQUAL"
	ConditionContains           RuleCondition = "CONTAINS"
	ConditionIn                 RuleCondition = "IN"
)

// ScoringRule matches one borrower attribute against a value and yields a
// score when it holds.
type ScoringRule struct {
	ID          int             `json:"id" db:"id"`
	ParameterID int             `json:"parameter_id" db:"parameter_id"`
	Field       string          `json:"field" db:"field"`
	Condition   RuleCondition   `json:"condition" db:"condition"`
	Value       string          `json:"value" db:"value"`
	Score       decimal.Decimal `json:"score" db:"score"`
}

// Matches evaluates the rule against an attribute value. Comparisons are
// numeric when both sides parse as numbers, string (case-insensitive)
// otherwise.
func (r *ScoringRule) Matches(attrValue string) bool {
	switch r.Condition {
	case ConditionContains:
		return strings.Contains(strings.ToLower(attrValue), strings.ToLower(r.Value))
	case ConditionIn:
		for _, v := range strings.Split(r.Value, ",") {
			if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(attrValue)) {
				return true
			}
		}
		return false
	}

	av, aerr := strconv.ParseFloat(strings.TrimSpace(attrValue), 64)
	rv, rerr := strconv.ParseFloat(strings.TrimSpace(r.Value), 64)
	if aerr == nil && rerr == nil {
		switch r.Condition {
		case ConditionEquals:
			return av == rv
		case ConditionNotEquals:
			return av != rv
		case ConditionGreaterThan:
			return av > rv
		case ConditionGreaterThanOrEqual:
			return av >= rv
		case ConditionLessThan:
			return av < rv
		case ConditionLessThanOrEqual:
			return av <= rv
		}
		return false
	}

	eq := strings.EqualFold(strings.TrimSpace(attrValue), strings.TrimSpace(r.Value))
	switch r.Condition {
	case ConditionEquals:
		return eq
	case ConditionNotEquals:
		return !eq
	}
	return false
}

// ScoringParameter groups rules over one concern; Weight caps the score the
// parameter can contribute.
type ScoringParameter struct {
	ID         int             `json:"id" db:"id"`
	ProviderID int             `json:"provider_id" db:"provider_id"`
	Name       string          `json:"name" db:"name"`
	Weight     decimal.Decimal `json:"weight" db:"weight"`
	Rules      []ScoringRule   `json:"rules" db:"rules"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// EvaluateScore scores borrower attributes against the provider's parameters:
// per parameter the best matching rule score capped at the parameter weight,
// summed across parameters, rounded to the nearest integer. A provider with
// no parameters configured cannot score anyone.
func EvaluateScore(attrs BorrowerAttributes, params []*ScoringParameter) (int, error) {
	if len(params) == 0 {
		return 0, ErrNoScoringParameters
	}

	total := decimal.Zero
	for _, p := range params {
		best := decimal.Zero
		for i := range p.Rules {
			rule := &p.Rules[i]
			attrValue, ok := attrs.Get(rule.Field)
			if !ok {
				continue
			}
			if rule.Matches(attrValue) && rule.Score.GreaterThan(best) {
				best = rule.Score
			}
		}
		if best.GreaterThan(p.Weight) {
			best = p.Weight
		}
		total = total.Add(best)
	}

	return int(total.Round(0).IntPart()), nil
}

// LoanAmountTier maps a score range to a loan amount ceiling.
type LoanAmountTier struct {
	ID         int             `json:"id" db:"id"`
	ProductID  int             `json:"product_id" db:"product_id"`
	FromScore  int             `json:"from_score" db:"from_score"`
	ToScore    int             `json:"to_score" db:"to_score"`
	LoanAmount decimal.Decimal `json:"loan_amount" db:"loan_amount"`
}

// TierAmountFor returns the ceiling of the first tier containing the score,
// zero when no tier matches.
func TierAmountFor(tiers []*LoanAmountTier, score int) decimal.Decimal {
	for _, t := range tiers {
		if score >= t.FromScore && score <= t.ToScore {
			return t.LoanAmount
		}
	}
	return decimal.Zero
}

// CycleMetric selects which repayment-history count drives cycle limiting
type CycleMetric string

const (
	MetricTotalCount CycleMetric = "TOTAL_COUNT"
	MetricPaidEarly  CycleMetric = "PAID_EARLY"
	MetricPaidLate   CycleMetric = "PAID_LATE"
	MetricPaidOnTime CycleMetric = "PAID_ON_TIME"
)

// RepaymentHistory holds a borrower's repayment counts as assembled for
// scoring.
type RepaymentHistory struct {
	TotalCount int
	PaidOnTime int
	PaidLate   int
	PaidEarly  int
}

// CountFor returns the count the metric selects.
func (h RepaymentHistory) CountFor(metric CycleMetric) int {
	switch metric {
	case MetricPaidEarly:
		return h.PaidEarly
	case MetricPaidLate:
		return h.PaidLate
	case MetricPaidOnTime:
		return h.PaidOnTime
	default:
		return h.TotalCount
	}
}

// CycleRange is one [Min, Max] loan-count bucket.
type CycleRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CycleGrade labels a score band and carries one access percentage per cycle
// range, aligned by index.
type CycleGrade struct {
	Label       string            `json:"label"`
	MinScore    int               `json:"minScore"`
	Percentages []decimal.Decimal `json:"percentages"`
}

// LoanCycleConfig limits what fraction of a score-qualified ceiling a
// borrower may access based on loan-count history. CycleRanges and Grades
// form the two-dimensional lookup; Cycles is the legacy single-dimension
// fallback used when grade/range data is absent.
type LoanCycleConfig struct {
	ID          int               `json:"id" db:"id"`
	ProductID   int               `json:"product_id" db:"product_id"`
	Metric      CycleMetric       `json:"metric" db:"metric"`
	CycleRanges []CycleRange      `json:"cycle_ranges" db:"cycle_ranges"`
	Grades      []CycleGrade      `json:"grades" db:"grades"`
	Cycles      []decimal.Decimal `json:"cycles" db:"cycles"`
	Enabled     bool              `json:"enabled" db:"enabled"`
}

// CycleLimit resolves the access fraction in [0, 1] for a score and metric
// count. A disabled or absent config does not limit.
func CycleLimit(cfg *LoanCycleConfig, score, metricCount int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if cfg == nil || !cfg.Enabled {
		return one
	}

	if len(cfg.Grades) > 0 && len(cfg.CycleRanges) > 0 {
		bucket := len(cfg.CycleRanges) - 1
		for i, r := range cfg.CycleRanges {
			if metricCount >= r.Min && metricCount <= r.Max {
				bucket = i
				break
			}
		}

		var grade *CycleGrade
		for i := range cfg.Grades {
			g := &cfg.Grades[i]
			if g.MinScore > score {
				continue
			}
			if grade == nil || g.MinScore > grade.MinScore {
				grade = g
			}
		}
		if grade == nil || len(grade.Percentages) == 0 {
			return decimal.Zero
		}
		if bucket >= len(grade.Percentages) {
			bucket = len(grade.Percentages) - 1
		}
		return clampFraction(grade.Percentages[bucket])
	}

	if len(cfg.Cycles) > 0 {
		idx := metricCount + 1
		if idx > len(cfg.Cycles) {
			idx = len(cfg.Cycles)
		}
		return clampFraction(cfg.Cycles[idx-1])
	}

	return one
}

// clampFraction normalizes a configured percentage (45 or 0.45 both mean
// forty-five percent) into [0, 1].
func clampFraction(v decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if v.GreaterThan(one) {
		v = v.Div(decimal.NewFromInt(100))
	}
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(one) {
		return one
	}
	return v
}

// AccessibleAmount bounds what the borrower may actually draw: the tier
// ceiling for the score, scaled by the cycle limit, minus principal still
// outstanding on the borrower's other active loans with the provider, floored
// at zero.
func AccessibleAmount(tiers []*LoanAmountTier, cfg *LoanCycleConfig, score, metricCount int, outstanding decimal.Decimal) decimal.Decimal {
	ceiling := TierAmountFor(tiers, score)
	limited := ceiling.Mul(CycleLimit(cfg, score, metricCount))
	if limited.GreaterThan(ceiling) {
		limited = ceiling
	}
	accessible := limited.Sub(outstanding)
	if accessible.IsNegative() {
		return decimal.Zero
	}
	return accessible
}
