package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/repository"
	"rtr_earnings/internal/service"

	"github.com/gin-gonic/gin"
)

// PendingRequests returns every queue an admin reviews, in one response.
func (h *Handler) PendingRequests(c *gin.Context) {
	ctx := c.Request.Context()

	deposits, err := h.DepositRepo.GetPending(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending requests"})
		return
	}
	withdrawals, err := h.WithdrawalRepo.GetPending(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending requests"})
		return
	}
	purchases, err := h.CoinPurchaseRepo.GetPending(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending requests"})
		return
	}

	if deposits == nil {
		deposits = []domain.Deposit{}
	}
	if withdrawals == nil {
		withdrawals = []domain.Withdrawal{}
	}
	if purchases == nil {
		purchases = []domain.CoinPurchase{}
	}

	c.JSON(http.StatusOK, gin.H{
		"deposits":       deposits,
		"withdrawals":    withdrawals,
		"coin_purchases": purchases,
	})
}

func parseKind(s string) (service.RequestKind, bool) {
	switch s {
	case "deposits":
		return service.KindDeposit, true
	case "withdrawals":
		return service.KindWithdrawal, true
	case "coin-purchases":
		return service.KindCoinPurchase, true
	default:
		return "", false
	}
}

// ApproveRequest handles POST /admin/:kind/:id/approve for all three queues.
func (h *Handler) ApproveRequest(c *gin.Context) {
	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown request kind"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	ctx := c.Request.Context()
	switch kind {
	case service.KindDeposit:
		err = h.ApprovalService.ApproveDeposit(ctx, id)
	case service.KindWithdrawal:
		err = h.ApprovalService.ApproveWithdrawal(ctx, id)
	case service.KindCoinPurchase:
		err = h.ApprovalService.ApproveCoinPurchase(ctx, id)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, gin.H{"error": "request already processed"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user has insufficient balance, request left pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "approval failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// RejectRequest handles POST /admin/:kind/:id/reject.
func (h *Handler) RejectRequest(c *gin.Context) {
	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown request kind"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.ApprovalService.Reject(c.Request.Context(), kind, id); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, gin.H{"error": "request already processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rejection failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// ListUsers returns all users with deposit/withdrawal totals and referral
// counts for the admin table.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.UserRepo.ListWithStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		u := users[i]
		out = append(out, gin.H{
			"id":               u.ID,
			"email":            u.Email,
			"name":             u.Name,
			"referral_code":    u.ReferralCode,
			"referred_by":      u.ReferredBy,
			"pkr_balance":      u.PkrBalance,
			"coin_balance":     u.CoinBalance,
			"created_at":       u.CreatedAt,
			"total_deposit":    u.TotalDeposit,
			"total_withdrawal": u.TotalWithdrawal,
			"referrals":        u.Referrals,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.AdminService.DeleteUser(c.Request.Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrCannotDeleteAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete an admin account"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "deletion failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type AdjustBalanceRequest struct {
	PkrDelta  float64 `json:"pkr_delta"`
	CoinDelta int64   `json:"coin_delta"`
}

func (h *Handler) AdjustBalance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.AdminService.AdjustBalance(c.Request.Context(), userID, req.PkrDelta, req.CoinDelta); err != nil {
		switch {
		case errors.Is(err, service.ErrNoAdjustment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to adjust"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInsufficientFunds), errors.Is(err, service.ErrInsufficientCoins):
			c.JSON(http.StatusBadRequest, gin.H{"error": "adjustment would make balance negative"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "adjustment failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "adjusted"})
}

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.AdminService.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}
	if settings.CoinRate <= 0 || settings.ReferralPercentage < 0 ||
		settings.MinWithdrawal < 0 || settings.MaxWithdrawal < settings.MinWithdrawal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings values"})
		return
	}

	if err := h.AdminService.UpdateSettings(c.Request.Context(), &settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// ListAllPlans includes inactive plans, unlike the user-facing catalog.
func (h *Handler) ListAllPlans(c *gin.Context) {
	plans, err := h.PlanRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plans"})
		return
	}
	if plans == nil {
		plans = []domain.Plan{}
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type PlanRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	CoinRequirement int64   `json:"coin_requirement" binding:"gte=0"`
	DurationDays    int     `json:"duration_days" binding:"required,gt=0"`
	ProfitRate      float64 `json:"profit_rate" binding:"gte=0"`
	IsActive        bool    `json:"is_active"`
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, positive price and duration_days are required"})
		return
	}

	plan := &domain.Plan{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		CoinRequirement: req.CoinRequirement,
		DurationDays:    req.DurationDays,
		ProfitRate:      req.ProfitRate,
		IsActive:        req.IsActive,
	}
	if err := h.PlanRepo.Create(c.Request.Context(), plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) UpdatePlan(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, positive price and duration_days are required"})
		return
	}

	plan := &domain.Plan{
		ID:              planID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		CoinRequirement: req.CoinRequirement,
		DurationDays:    req.DurationDays,
		ProfitRate:      req.ProfitRate,
		IsActive:        req.IsActive,
	}
	if err := h.PlanRepo.Update(c.Request.Context(), plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *Handler) DeletePlan(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	if err := h.PlanRepo.Delete(c.Request.Context(), planID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// TriggerAccrual runs the profit sweep on demand instead of waiting for the
// scheduler tick.
func (h *Handler) TriggerAccrual(c *gin.Context) {
	credited, err := h.PlanService.AccrueProfits(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accrual sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"credited": credited})
}

func (h *Handler) ExportBackup(c *gin.Context) {
	backup, err := h.BackupService.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="backup.json"`)
	c.JSON(http.StatusOK, backup)
}

func (h *Handler) ImportBackup(c *gin.Context) {
	var backup service.Backup
	if err := c.ShouldBindJSON(&backup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup file"})
		return
	}

	if err := h.BackupService.Import(c.Request.Context(), &backup); err != nil {
		if errors.Is(err, service.ErrInvalidBackup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}
