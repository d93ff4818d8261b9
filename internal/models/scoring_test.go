package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringRule_Matches(t *testing.T) {
	tests := []struct {
		name      string
		condition RuleCondition
		ruleValue string
		attrValue string
		want      bool
	}{
		{"numeric equals", ConditionEquals, "3", "3", true},
		{"numeric greater than", ConditionGreaterThan, "2", "5", true},
		{"numeric greater than fails", ConditionGreaterThan, "5", "5", false},
		{"numeric greater or equal", ConditionGreaterThanOrEqual, "5", "5", true},
		{"numeric less than", ConditionLessThan, "10", "3", true},
		{"numeric less or equal boundary", ConditionLessThanOrEqual, "3", "3", true},
		{"numeric not equals", ConditionNotEquals, "1", "2", true},
		{"string equals case-insensitive", ConditionEquals, "Employed", "employed", true},
		{"string not equals", ConditionNotEquals, "student", "employed", true},
		{"contains", ConditionContains, "nairobi", "Greater Nairobi Area", true},
		{"in list", ConditionIn, "KE, UG, TZ", "ug", true},
		{"in list misses", ConditionIn, "KE, UG, TZ", "NG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &ScoringRule{Condition: tt.condition, Value: tt.ruleValue}
			assert.Equal(t, tt.want, rule.Matches(tt.attrValue))
		})
	}
}

func TestEvaluateScore(t *testing.T) {
	attrs := BorrowerAttributes{
		"employment": "employed",
		"age":        "34",
	}

	params := []*ScoringParameter{
		{
			Name:   "employment",
			Weight: decimal.NewFromInt(400),
			Rules: []ScoringRule{
				{Field: "employment", Condition: ConditionEquals, Value: "employed", Score: decimal.NewFromInt(350)},
				{Field: "employment", Condition: ConditionEquals, Value: "student", Score: decimal.NewFromInt(100)},
			},
		},
		{
			Name:   "age",
			Weight: decimal.NewFromInt(200),
			Rules: []ScoringRule{
				// Both match; the better score wins but is capped at the weight.
				{Field: "age", Condition: ConditionGreaterThan, Value: "18", Score: decimal.NewFromInt(300)},
				{Field: "age", Condition: ConditionGreaterThan, Value: "30", Score: decimal.NewFromInt(150)},
			},
		},
	}

	score, err := EvaluateScore(attrs, params)
	require.NoError(t, err)
	assert.Equal(t, 550, score)
}

func TestEvaluateScore_NoParameters(t *testing.T) {
	_, err := EvaluateScore(BorrowerAttributes{"a": "1"}, nil)
	assert.ErrorIs(t, err, ErrNoScoringParameters)
}

func TestEvaluateScore_MissingAttributeScoresZero(t *testing.T) {
	params := []*ScoringParameter{
		{
			Weight: decimal.NewFromInt(100),
			Rules: []ScoringRule{
				{Field: "income", Condition: ConditionGreaterThan, Value: "1000", Score: decimal.NewFromInt(100)},
			},
		},
	}

	score, err := EvaluateScore(BorrowerAttributes{}, params)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestTierAmountFor(t *testing.T) {
	tiers := []*LoanAmountTier{
		{FromScore: 0, ToScore: 499, LoanAmount: decimal.NewFromInt(1000)},
		{FromScore: 500, ToScore: 699, LoanAmount: decimal.NewFromInt(5000)},
		{FromScore: 700, ToScore: 1000, LoanAmount: decimal.NewFromInt(10000)},
	}

	assert.True(t, decimal.NewFromInt(1000).Equal(TierAmountFor(tiers, 250)))
	assert.True(t, decimal.NewFromInt(5000).Equal(TierAmountFor(tiers, 500)))
	assert.True(t, decimal.NewFromInt(10000).Equal(TierAmountFor(tiers, 1000)))
	assert.True(t, TierAmountFor(tiers, 1500).IsZero())
}

func gradedCycleConfig() *LoanCycleConfig {
	return &LoanCycleConfig{
		Metric: MetricTotalCount,
		CycleRanges: []CycleRange{
			{Min: 0, Max: 1},
			{Min: 2, Max: 4},
			{Min: 5, Max: 10},
		},
		Grades: []CycleGrade{
			{Label: "A", MinScore: 700, Percentages: []decimal.Decimal{decimal.NewFromInt(35), decimal.NewFromInt(50), decimal.NewFromInt(80)}},
			{Label: "B", MinScore: 600, Percentages: []decimal.Decimal{decimal.NewFromInt(30), decimal.NewFromInt(45), decimal.NewFromInt(70)}},
		},
		Enabled: true,
	}
}

func TestCycleLimit_Grades(t *testing.T) {
	cfg := gradedCycleConfig()

	tests := []struct {
		name        string
		score       int
		metricCount int
		want        string
	}{
		{"grade B middle bucket", 650, 3, "0.45"},
		{"grade A middle bucket", 720, 3, "0.5"},
		{"exact grade boundary", 700, 3, "0.5"},
		{"first bucket", 650, 0, "0.3"},
		{"last bucket", 720, 7, "0.8"},
		{"count beyond every range falls to last bucket", 720, 25, "0.8"},
		{"score below every grade", 500, 3, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CycleLimit(cfg, tt.score, tt.metricCount)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestCycleLimit_LegacyCycles(t *testing.T) {
	cfg := &LoanCycleConfig{
		Cycles:  []decimal.Decimal{decimal.NewFromFloat(0.5), decimal.NewFromFloat(0.75), decimal.NewFromInt(1)},
		Enabled: true,
	}

	assert.True(t, decimal.NewFromFloat(0.5).Equal(CycleLimit(cfg, 0, 0)), "first loan")
	assert.True(t, decimal.NewFromFloat(0.75).Equal(CycleLimit(cfg, 0, 1)), "second loan")
	assert.True(t, decimal.NewFromInt(1).Equal(CycleLimit(cfg, 0, 2)), "third loan")
	assert.True(t, decimal.NewFromInt(1).Equal(CycleLimit(cfg, 0, 9)), "beyond the list sticks to the last entry")
}

func TestCycleLimit_DisabledOrAbsent(t *testing.T) {
	one := decimal.NewFromInt(1)

	assert.True(t, one.Equal(CycleLimit(nil, 500, 3)))
	assert.True(t, one.Equal(CycleLimit(&LoanCycleConfig{Enabled: false}, 500, 3)))
	assert.True(t, one.Equal(CycleLimit(&LoanCycleConfig{Enabled: true}, 500, 3)), "enabled but empty does not limit")
}

func TestAccessibleAmount(t *testing.T) {
	tiers := []*LoanAmountTier{
		{FromScore: 600, ToScore: 1000, LoanAmount: decimal.NewFromInt(10000)},
	}
	cfg := gradedCycleConfig()

	// Grade B, middle bucket: 45% of 10000 = 4500, minus 1000 outstanding.
	got := AccessibleAmount(tiers, cfg, 650, 3, decimal.NewFromInt(1000))
	assert.True(t, decimal.NewFromInt(3500).Equal(got), "got %s", got)

	// Outstanding above the limit floors at zero.
	got = AccessibleAmount(tiers, cfg, 650, 3, decimal.NewFromInt(9000))
	assert.True(t, got.IsZero())

	// No limiting config: the full tier ceiling.
	got = AccessibleAmount(tiers, nil, 650, 3, decimal.Zero)
	assert.True(t, decimal.NewFromInt(10000).Equal(got))
}
