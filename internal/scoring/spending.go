package scoring

import (
	"sort"
	"strings"

	"github.com/securebank-labs/securebank/internal/models"
)

// categoryKeywords maps a spending category to the description keywords that
// select it. First match wins, in the listed category order.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"food", []string{"zomato", "swiggy", "restaurant", "food", "cafe", "coffee", "pizza", "burger", "hotel", "dining"}},
	{"transport", []string{"uber", "ola", "taxi", "fuel", "petrol", "metro", "bus", "train", "rapido", "auto"}},
	{"shopping", []string{"amazon", "flipkart", "myntra", "mall", "shop", "store", "market", "meesho"}},
	{"utilities", []string{"electricity", "water", "gas", "internet", "broadband", "wifi", "bill", "jio", "airtel"}},
	{"entertainment", []string{"netflix", "amazon prime", "hotstar", "movie", "theatre", "spotify", "gaming"}},
	{"medical", []string{"pharmacy", "hospital", "clinic", "doctor", "medicine", "health", "apollo", "medplus"}},
	{"education", []string{"school", "college", "university", "course", "udemy", "tuition", "book"}},
	{"transfer", []string{"transfer", "neft", "imps", "upi", "sent to", "received from"}},
}

// Categorize classifies a transaction description into a spending category
func Categorize(description string) string {
	lower := strings.ToLower(description)

	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category
			}
		}
	}

	return "other"
}

// CategoryBreakdown summarises one spending category
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	TotalCents int64   `json:"total_cents"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SpendingAnalysis summarises debit activity over a window
type SpendingAnalysis struct {
	MonthlyTrendCents map[string]int64    `json:"monthly_trend_cents"`
	TopCategory       string              `json:"top_category"`
	Breakdown         []CategoryBreakdown `json:"category_breakdown"`
	TotalSpentCents   int64               `json:"total_spent_cents"`
	TransactionCount  int                 `json:"transaction_count"`
}

// AnalyzeSpending builds the category breakdown, monthly trend and top
// category over the debit entries in the given transactions. Credits are
// ignored. Pure: the caller selects the window.
func AnalyzeSpending(transactions []*models.Transaction) SpendingAnalysis {
	totals := make(map[string]int64)
	counts := make(map[string]int)
	monthly := make(map[string]int64)

	var totalSpent int64
	debitCount := 0

	for _, txn := range transactions {
		if txn.Direction != models.TransactionDebit {
			continue
		}
		debitCount++

		category := Categorize(txn.Description)
		totals[category] += txn.AmountCents
		counts[category]++
		totalSpent += txn.AmountCents

		monthKey := txn.CreatedAt.UTC().Format("2006-01")
		monthly[monthKey] += txn.AmountCents
	}

	breakdown := make([]CategoryBreakdown, 0, len(totals))
	topCategory := "none"
	var topTotal int64
	for category, total := range totals {
		pct := 0.0
		if totalSpent > 0 {
			pct = roundTenth(float64(total) / float64(totalSpent) * 100)
		}
		breakdown = append(breakdown, CategoryBreakdown{
			Category:   category,
			TotalCents: total,
			Count:      counts[category],
			Percentage: pct,
		})
		if total > topTotal {
			topTotal = total
			topCategory = category
		}
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].TotalCents != breakdown[j].TotalCents {
			return breakdown[i].TotalCents > breakdown[j].TotalCents
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return SpendingAnalysis{
		TotalSpentCents:   totalSpent,
		TransactionCount:  debitCount,
		Breakdown:         breakdown,
		MonthlyTrendCents: monthly,
		TopCategory:       topCategory,
	}
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
