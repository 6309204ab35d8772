package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securebank-labs/securebank/internal/middleware"
)

type amountBody struct {
	Amount string `json:"amount" binding:"required"`
}

// FraudCheck handles POST /api/v1/insights/fraud-check
func (h *Handler) FraudCheck(c *gin.Context) {
	var body amountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "amount is required")
		return
	}

	amountCents, err := parseAmount(body.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.CallerIdentity(c)
	assessment, err := h.insights.FraudCheck(c.Request.Context(), caller.ID, amountCents)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fraud_score": assessment.Verdict.FraudScore,
		"is_fraud":    assessment.Verdict.IsFraud,
		"risk_level":  assessment.RiskLevel,
		"model":       assessment.Verdict.Model,
	})
}

// LoanEligibility handles POST /api/v1/insights/loan-eligibility
func (h *Handler) LoanEligibility(c *gin.Context) {
	var body amountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "amount is required")
		return
	}

	amountCents, err := parseAmount(body.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.CallerIdentity(c)
	verdict, err := h.insights.LoanEligibility(c.Request.Context(), caller.ID, amountCents)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"eligible":   verdict.Eligible,
		"score":      verdict.Score,
		"confidence": verdict.Confidence,
		"reasons":    verdict.Reasons,
		"model":      verdict.Model,
	})
}

// Spending handles GET /api/v1/insights/spending
func (h *Handler) Spending(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	days := queryInt(c, "days", 0)

	analysis, err := h.insights.Spending(c.Request.Context(), caller.ID, days)
	if err != nil {
		h.respondError(c, err)
		return
	}

	type categoryView struct {
		Category   string  `json:"category"`
		Total      string  `json:"total"`
		Count      int     `json:"count"`
		Percentage float64 `json:"percentage"`
	}
	breakdown := make([]categoryView, 0, len(analysis.Breakdown))
	for _, b := range analysis.Breakdown {
		breakdown = append(breakdown, categoryView{
			Category:   b.Category,
			Total:      formatCents(b.TotalCents),
			Count:      b.Count,
			Percentage: b.Percentage,
		})
	}
	trend := make(map[string]string, len(analysis.MonthlyTrendCents))
	for month, cents := range analysis.MonthlyTrendCents {
		trend[month] = formatCents(cents)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_spent":        formatCents(analysis.TotalSpentCents),
		"transaction_count":  analysis.TransactionCount,
		"top_category":       analysis.TopCategory,
		"category_breakdown": breakdown,
		"monthly_trend":      trend,
	})
}

// CreditScore handles GET /api/v1/insights/credit-score
func (h *Handler) CreditScore(c *gin.Context) {
	caller := middleware.CallerIdentity(c)

	result, err := h.insights.CreditScore(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":   result.Score,
		"rating":  result.Rating,
		"factors": result.Factors,
	})
}
