package scoring

// Credit score bounds of the simulated model
const (
	creditBaseScore = 300
	creditMaxScore  = 900
)

// CreditContext carries the behaviour aggregates the credit model scores.
// AverageBalance is in major currency units.
type CreditContext struct {
	AverageBalance  float64
	AccountAgeDays  int
	MonthlyTxnCount int64
	FlaggedCount    int64
	HasHistory      bool
}

// CreditFactor is one scored component of the credit result
type CreditFactor struct {
	Factor string `json:"factor"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
}

// CreditResult is the simulated 300-900 credit score with its breakdown
type CreditResult struct {
	Rating  string         `json:"rating"`
	Factors []CreditFactor `json:"factors"`
	Score   int            `json:"score"`
}

// ScoreCredit computes the simulated credit score: a 300 base plus account
// age, average balance, transaction activity and clean-history components,
// capped at 900.
func ScoreCredit(cc CreditContext) CreditResult {
	score := creditBaseScore
	var factors []CreditFactor

	ageScore := cc.AccountAgeDays / 3
	if ageScore > 100 {
		ageScore = 100
	}
	score += ageScore
	factors = append(factors, CreditFactor{Factor: "Account Age", Points: ageScore, Max: 100})

	balanceScore := 0
	if cc.HasHistory && cc.AverageBalance > 0 {
		balanceScore = int(cc.AverageBalance/1000) * 10
		if balanceScore > 150 {
			balanceScore = 150
		}
	}
	score += balanceScore
	factors = append(factors, CreditFactor{Factor: "Average Balance", Points: balanceScore, Max: 150})

	freqScore := int(cc.MonthlyTxnCount) * 10
	if freqScore > 150 {
		freqScore = 150
	}
	score += freqScore
	factors = append(factors, CreditFactor{Factor: "Transaction Activity", Points: freqScore, Max: 150})

	cleanScore := 200 - int(cc.FlaggedCount)*50
	if cleanScore < 0 {
		cleanScore = 0
	}
	score += cleanScore
	factors = append(factors, CreditFactor{Factor: "Clean Transaction History", Points: cleanScore, Max: 200})

	if score > creditMaxScore {
		score = creditMaxScore
	}

	return CreditResult{
		Score:   score,
		Rating:  creditRating(score),
		Factors: factors,
	}
}

func creditRating(score int) string {
	switch {
	case score >= 750:
		return "Excellent"
	case score >= 650:
		return "Good"
	case score >= 550:
		return "Fair"
	default:
		return "Poor"
	}
}
