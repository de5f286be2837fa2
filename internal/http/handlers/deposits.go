package handlers

import (
	"net/http"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"

	"github.com/gin-gonic/gin"
)

type CreateDepositRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transaction_id" binding:"required"`
	Screenshot    string  `json:"screenshot"`
}

// CreateDeposit records a manual payment claim. It stays pending until an
// admin verifies the payment and approves it.
func (h *Handler) CreateDeposit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount, method and transaction_id are required"})
		return
	}

	deposit := &domain.Deposit{
		UserID:        userID,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Screenshot:    req.Screenshot,
	}
	if err := h.DepositRepo.Create(c.Request.Context(), deposit); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create deposit request"})
		return
	}

	h.Hub.Publish(events.RequestCreated, userID, map[string]any{
		"kind": "deposit", "id": deposit.ID, "amount": deposit.Amount,
	})
	c.JSON(http.StatusCreated, deposit)
}

func (h *Handler) MyDeposits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	deposits, err := h.DepositRepo.GetByUserID(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deposits"})
		return
	}
	if deposits == nil {
		deposits = []domain.Deposit{}
	}

	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// DepositInfo returns the payment accounts users should send money to.
func (h *Handler) DepositInfo(c *gin.Context) {
	settings, err := h.SettingsRepo.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":  settings.DepositAccounts,
		"coin_rate": settings.CoinRate,
	})
}
