// Package scoring holds the pure, deterministic scoring functions the ledger
// and insight services call. Nothing in this package performs I/O or keeps
// state; a fault inside a scorer is contained and converted into a safe
// default verdict so a scoring problem can never block money movement.
package scoring

import "math"

// Model tags reported in verdicts
const (
	ModelRuleBased     = "rule_based"
	ModelFallbackError = "fallback_error"
)

// Threshold above which a scored debit is flagged for review
const fraudFlagThreshold = 0.5

// FraudContext carries the four numeric features scored for a debit.
// Amounts are in major currency units.
type FraudContext struct {
	Amount        float64
	Hour          int
	BalanceBefore float64
	SameDayCount  int64
}

// FraudVerdict is the result of scoring a single debit
type FraudVerdict struct {
	Model      string
	FraudScore float64
	IsFraud    bool
}

// FraudScorer is the strategy interface for fraud scoring. The rule-based
// variant is the only one shipped; a trained-model variant slots in behind
// the same interface.
type FraudScorer interface {
	Score(fc FraudContext) FraudVerdict
}

// RuleBasedFraudScorer scores with fixed additive weights:
// a debit close to draining the balance, an unusual hour, a high same-day
// transaction count, and an extreme absolute amount each add weight,
// capped at 1.0.
type RuleBasedFraudScorer struct{}

// Score implements FraudScorer
func (RuleBasedFraudScorer) Score(fc FraudContext) FraudVerdict {
	score := 0.0

	if fc.BalanceBefore > 0 && fc.Amount/fc.BalanceBefore > 0.8 {
		score += 0.3
	}

	if fc.Hour >= 0 && fc.Hour <= 5 {
		score += 0.25
	}

	if fc.SameDayCount > 10 {
		score += 0.25
	}

	if fc.Amount > 100000 {
		score += 0.25
	}

	score = math.Min(score, 1.0)

	return FraudVerdict{
		IsFraud:    score >= fraudFlagThreshold,
		FraudScore: round4(score),
		Model:      ModelRuleBased,
	}
}

// SafeVerdict is what a contained scorer fault degrades to: unflagged,
// zero score.
func SafeVerdict() FraudVerdict {
	return FraudVerdict{IsFraud: false, FraudScore: 0, Model: ModelFallbackError}
}

type containedScorer struct {
	inner FraudScorer
}

// Contained wraps a scorer so that any panic inside it yields SafeVerdict
// instead of propagating into the ledger.
func Contained(inner FraudScorer) FraudScorer {
	return &containedScorer{inner: inner}
}

func (c *containedScorer) Score(fc FraudContext) (verdict FraudVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = SafeVerdict()
		}
	}()
	return c.inner.Score(fc)
}

// NewFraudScorer selects a scoring strategy by name. Unknown names fall back
// to the rule-based variant; the returned scorer is always fault-contained.
func NewFraudScorer(strategy string) FraudScorer {
	switch strategy {
	case ModelRuleBased, "":
		return Contained(RuleBasedFraudScorer{})
	default:
		return Contained(RuleBasedFraudScorer{})
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
