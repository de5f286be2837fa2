package handlers

import (
	"math"
	"net/http"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"

	"github.com/gin-gonic/gin"
)

type CreateCoinPurchaseRequest struct {
	PkrAmount     float64 `json:"pkr_amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transaction_id" binding:"required"`
	Screenshot    string  `json:"screenshot"`
}

// CreateCoinPurchase captures the coin amount at the rate in effect when the
// request is made. A later rate change does not alter pending requests.
func (h *Handler) CreateCoinPurchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateCoinPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pkr_amount, method and transaction_id are required"})
		return
	}

	ctx := c.Request.Context()
	settings, err := h.SettingsRepo.Get(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	coins := int64(math.Floor(req.PkrAmount / settings.CoinRate))
	if coins < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount too small for one coin"})
		return
	}

	purchase := &domain.CoinPurchase{
		UserID:        userID,
		PkrAmount:     req.PkrAmount,
		CoinAmount:    coins,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Screenshot:    req.Screenshot,
	}
	if err := h.CoinPurchaseRepo.Create(ctx, purchase); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create coin purchase request"})
		return
	}

	h.Hub.Publish(events.RequestCreated, userID, map[string]any{
		"kind": "coin_purchase", "id": purchase.ID, "coins": purchase.CoinAmount,
	})
	c.JSON(http.StatusCreated, purchase)
}

func (h *Handler) MyCoinPurchases(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	purchases, err := h.CoinPurchaseRepo.GetByUserID(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load coin purchases"})
		return
	}
	if purchases == nil {
		purchases = []domain.CoinPurchase{}
	}

	c.JSON(http.StatusOK, gin.H{"coin_purchases": purchases})
}
