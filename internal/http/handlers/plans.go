package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPlans returns the active catalog for users.
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.PlanRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plans"})
		return
	}

	active := []domain.Plan{}
	for _, p := range plans {
		if p.IsActive {
			active = append(active, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{"plans": active})
}

func (h *Handler) PurchasePlan(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	sub, err := h.PlanService.Purchase(c.Request.Context(), userID, planID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		case errors.Is(err, service.ErrPlanInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan is not available"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, service.ErrInsufficientCoins):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient coins"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// MySubscriptions lists the caller's plan purchases with an active flag.
func (h *Handler) MySubscriptions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	subs, err := h.SubscriptionRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscriptions"})
		return
	}

	now := time.Now()
	out := make([]gin.H, 0, len(subs))
	for i := range subs {
		sub := subs[i]
		out = append(out, gin.H{
			"id":             sub.ID,
			"plan_id":        sub.PlanID,
			"plan_name":      sub.PlanName,
			"purchase_date":  sub.PurchaseDate,
			"expiry_date":    sub.ExpiryDate,
			"duration_days":  sub.DurationDays,
			"total_profit":   sub.TotalProfit,
			"profit_claimed": sub.ProfitClaimed,
			"active":         sub.Active(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}
