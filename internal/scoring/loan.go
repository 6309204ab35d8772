package scoring

import "math"

// Minimum additive score for loan eligibility
const loanEligibleThreshold = 60

// LoanContext carries the applicant aggregates derived from account history.
// Amounts are in major currency units.
type LoanContext struct {
	AverageBalance  float64
	AccountAgeDays  int
	MonthlyTxnCount int64
	RequestedAmount float64
}

// LoanVerdict is the result of a loan eligibility check
type LoanVerdict struct {
	Reasons    []string
	Model      string
	Score      int
	Confidence float64
	Eligible   bool
}

// ScoreLoan applies the additive eligibility rubric: balance relative to the
// requested amount, account age, transaction activity, and loan-to-balance
// ratio each contribute points; 60 of 100 qualifies. Any internal fault
// degrades to an ineligible zero verdict rather than propagating.
func ScoreLoan(lc LoanContext) (verdict LoanVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = LoanVerdict{
				Eligible: false,
				Reasons:  []string{"Scoring unavailable"},
				Model:    ModelFallbackError,
			}
		}
	}()

	score := 0
	var reasons []string

	if lc.AverageBalance >= lc.RequestedAmount*0.3 {
		score += 30
	} else {
		reasons = append(reasons, "Low average balance relative to loan amount")
	}

	switch {
	case lc.AccountAgeDays >= 180:
		score += 25
	case lc.AccountAgeDays >= 90:
		score += 15
		reasons = append(reasons, "Account is relatively new")
	default:
		reasons = append(reasons, "Account too new (less than 90 days)")
	}

	switch {
	case lc.MonthlyTxnCount >= 10:
		score += 25
	case lc.MonthlyTxnCount >= 5:
		score += 15
		reasons = append(reasons, "Low transaction activity")
	default:
		reasons = append(reasons, "Very low transaction activity")
	}

	switch {
	case lc.RequestedAmount <= lc.AverageBalance*3:
		score += 20
	case lc.RequestedAmount <= lc.AverageBalance*6:
		score += 10
		reasons = append(reasons, "High loan-to-balance ratio")
	default:
		reasons = append(reasons, "Loan amount too high relative to balance")
	}

	eligible := score >= loanEligibleThreshold
	if eligible {
		reasons = []string{"Good account history", "Sufficient balance"}
	}

	return LoanVerdict{
		Eligible:   eligible,
		Score:      score,
		Confidence: math.Round(float64(score)) / 100,
		Reasons:    reasons,
		Model:      ModelRuleBased,
	}
}
