package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleBasedFraudScorer(t *testing.T) {
	scorer := RuleBasedFraudScorer{}

	tests := []struct {
		name      string
		ctx       FraudContext
		wantScore float64
		wantFraud bool
	}{
		{
			name:      "ordinary daytime debit",
			ctx:       FraudContext{Amount: 100, Hour: 14, BalanceBefore: 5000, SameDayCount: 2},
			wantScore: 0,
			wantFraud: false,
		},
		{
			name:      "drains most of the balance",
			ctx:       FraudContext{Amount: 900, Hour: 14, BalanceBefore: 1000, SameDayCount: 2},
			wantScore: 0.3,
			wantFraud: false,
		},
		{
			name:      "unusual hour only",
			ctx:       FraudContext{Amount: 100, Hour: 3, BalanceBefore: 5000, SameDayCount: 2},
			wantScore: 0.25,
			wantFraud: false,
		},
		{
			name:      "busy day only",
			ctx:       FraudContext{Amount: 100, Hour: 14, BalanceBefore: 5000, SameDayCount: 11},
			wantScore: 0.25,
			wantFraud: false,
		},
		{
			name:      "extreme amount only",
			ctx:       FraudContext{Amount: 150000, Hour: 14, BalanceBefore: 1000000, SameDayCount: 2},
			wantScore: 0.25,
			wantFraud: false,
		},
		{
			name:      "night withdrawal on a busy day is flagged",
			ctx:       FraudContext{Amount: 400, Hour: 2, BalanceBefore: 1500, SameDayCount: 12},
			wantScore: 0.5,
			wantFraud: true,
		},
		{
			name:      "night withdrawal draining the balance on a busy day",
			ctx:       FraudContext{Amount: 1400, Hour: 2, BalanceBefore: 1500, SameDayCount: 12},
			wantScore: 0.8,
			wantFraud: true,
		},
		{
			name:      "everything at once caps at 1.0",
			ctx:       FraudContext{Amount: 150000, Hour: 1, BalanceBefore: 160000, SameDayCount: 20},
			wantScore: 1.0,
			wantFraud: true,
		},
		{
			name:      "zero balance before skips the ratio rule",
			ctx:       FraudContext{Amount: 100, Hour: 14, BalanceBefore: 0, SameDayCount: 0},
			wantScore: 0,
			wantFraud: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := scorer.Score(tt.ctx)
			assert.InDelta(t, tt.wantScore, verdict.FraudScore, 1e-9)
			assert.Equal(t, tt.wantFraud, verdict.IsFraud)
			assert.Equal(t, ModelRuleBased, verdict.Model)
		})
	}
}

type panickingScorer struct{}

func (panickingScorer) Score(FraudContext) FraudVerdict {
	panic("model exploded")
}

func TestContainedScorerSwallowsPanics(t *testing.T) {
	scorer := Contained(panickingScorer{})

	verdict := scorer.Score(FraudContext{Amount: 100})

	assert.False(t, verdict.IsFraud)
	assert.Zero(t, verdict.FraudScore)
	assert.Equal(t, ModelFallbackError, verdict.Model)
}

func TestNewFraudScorerDefaultsToRuleBased(t *testing.T) {
	for _, strategy := range []string{"", ModelRuleBased, "isolation_forest"} {
		verdict := NewFraudScorer(strategy).Score(FraudContext{Amount: 100, Hour: 14, BalanceBefore: 5000})
		assert.Equal(t, ModelRuleBased, verdict.Model)
	}
}
