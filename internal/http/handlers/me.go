package handlers

import (
	"net/http"
	"strconv"

	"rtr_earnings/internal/domain"

	"github.com/gin-gonic/gin"
)

// userResponse strips the password hash from API output.
func userResponse(u *domain.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"is_admin":      u.IsAdmin,
		"referral_code": u.ReferralCode,
		"referred_by":   u.ReferredBy,
		"pkr_balance":   u.PkrBalance,
		"coin_balance":  u.CoinBalance,
		"created_at":    u.CreatedAt,
	}
}

func (h *Handler) Me(c *gin.Context) {
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

	c.JSON(http.StatusOK, userResponse(user))
}

// Transactions returns the caller's audit history, newest first. Optional
// ?type= filters to one transaction category, ?limit= caps the result.
func (h *Handler) Transactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	ctx := c.Request.Context()
	var (
		txs []*domain.Transaction
		err error
	)
	if txType := c.Query("type"); txType != "" {
		txs, err = h.TransactionRepo.GetByUserIDAndType(ctx, userID, txType, limit)
	} else {
		txs, err = h.TransactionRepo.GetByUserID(ctx, userID, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
