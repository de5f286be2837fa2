package handlers

import (
	"fmt"
	"net/http"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"

	"github.com/gin-gonic/gin"
)

type CreateWithdrawalRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	Method         string  `json:"method" binding:"required"`
	AccountDetails string  `json:"account_details" binding:"required"`
}

// CreateWithdrawal validates the amount against settings limits and the
// current balance. The balance is checked again under a row lock at approval
// time; this check only gives the user early feedback.
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount, method and account_details are required"})
		return
	}

	ctx := c.Request.Context()
	settings, err := h.SettingsRepo.Get(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	if req.Amount < settings.MinWithdrawal || req.Amount > settings.MaxWithdrawal {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("amount must be between %.0f and %.0f", settings.MinWithdrawal, settings.MaxWithdrawal),
		})
		return
	}

	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if user.PkrBalance < req.Amount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		return
	}

	withdrawal := &domain.Withdrawal{
		UserID:         userID,
		Amount:         req.Amount,
		Method:         req.Method,
		AccountDetails: req.AccountDetails,
	}
	if err := h.WithdrawalRepo.Create(ctx, withdrawal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create withdrawal request"})
		return
	}

	h.Hub.Publish(events.RequestCreated, userID, map[string]any{
		"kind": "withdrawal", "id": withdrawal.ID, "amount": withdrawal.Amount,
	})
	c.JSON(http.StatusCreated, withdrawal)
}

func (h *Handler) MyWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withdrawals, err := h.WithdrawalRepo.GetByUserID(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}
	if withdrawals == nil {
		withdrawals = []domain.Withdrawal{}
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}
