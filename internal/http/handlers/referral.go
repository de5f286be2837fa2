package handlers

import (
	"net/http"
	"os"

	"rtr_earnings/internal/domain"

	"github.com/gin-gonic/gin"
)

// ReferralInfo returns the caller's code and shareable signup link.
func (h *Handler) ReferralInfo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c.JSON(http.StatusOK, gin.H{
		"code": user.ReferralCode,
		"link": baseURL + "/register?ref=" + user.ReferralCode,
	})
}

// ReferralStats returns how many users signed up with the caller's code and
// the commissions it earned.
func (h *Handler) ReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	count, err := h.UserRepo.ReferralCount(ctx, user.ReferralCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral stats"})
		return
	}

	commissions, err := h.TransactionRepo.GetByUserIDAndType(ctx, userID, domain.TxReferralCommission, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral stats"})
		return
	}

	var totalEarned float64
	for _, tx := range commissions {
		totalEarned += tx.Amount
	}
	if commissions == nil {
		commissions = []*domain.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals":    count,
		"total_earned": totalEarned,
		"commissions":  commissions,
	})
}
