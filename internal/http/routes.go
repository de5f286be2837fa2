package http

import (
	"time"

	"rtr_earnings/internal/config"
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/http/handlers"
	"rtr_earnings/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, hub *events.Hub, cfg *config.Config, version string) *handlers.Handler {
	h := handlers.NewHandler(db, hub)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api/v1")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth gets a tighter window than the rest of the API
	api.POST("/auth/register", middleware.RedisRateLimit(5, time.Minute), h.Register)
	api.POST("/auth/login", middleware.RedisRateLimit(5, time.Minute), h.Login)

	// Profile and history
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/transactions", middleware.JWT(), h.Transactions)

	// Money-movement requests, throttled per user to keep the review queue sane
	api.GET("/deposits/info", h.DepositInfo)
	api.POST("/deposits", middleware.JWT(), middleware.UserRateLimit("deposit", 10, time.Hour), h.CreateDeposit)
	api.GET("/deposits", middleware.JWT(), h.MyDeposits)
	api.POST("/withdrawals", middleware.JWT(), middleware.UserRateLimit("withdrawal", 10, time.Hour), h.CreateWithdrawal)
	api.GET("/withdrawals", middleware.JWT(), h.MyWithdrawals)
	api.POST("/coins/purchase", middleware.JWT(), middleware.UserRateLimit("coin_purchase", 10, time.Hour), h.CreateCoinPurchase)
	api.GET("/coins/purchases", middleware.JWT(), h.MyCoinPurchases)

	// Investment plans
	api.GET("/plans", h.ListPlans)
	api.POST("/plans/:id/purchase", middleware.JWT(), h.PurchasePlan)
	api.GET("/me/plans", middleware.JWT(), h.MySubscriptions)

	// Rewards
	api.GET("/rewards/daily", middleware.JWT(), h.DailyRewardStatus)
	api.POST("/rewards/daily/claim", middleware.JWT(), h.ClaimDailyReward)
	api.GET("/rewards/spin", middleware.JWT(), h.SpinWheelStatus)
	api.POST("/rewards/spin", middleware.JWT(), h.Spin)
	api.GET("/rewards/spin/history", middleware.JWT(), h.SpinHistory)

	// Referrals
	api.GET("/referral", middleware.JWT(), h.ReferralInfo)
	api.GET("/referral/stats", middleware.JWT(), h.ReferralStats)

	// Admin surface
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(), middleware.AdminOnly())
	{
		admin.GET("/requests", h.PendingRequests)
		admin.POST("/requests/:kind/:id/approve", h.ApproveRequest)
		admin.POST("/requests/:kind/:id/reject", h.RejectRequest)

		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.POST("/users/:id/adjust", h.AdjustBalance)

		admin.GET("/plans", h.ListAllPlans)
		admin.POST("/plans", h.CreatePlan)
		admin.PUT("/plans/:id", h.UpdatePlan)
		admin.DELETE("/plans/:id", h.DeletePlan)

		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)

		admin.POST("/accrue", h.TriggerAccrual)

		admin.GET("/backup", h.ExportBackup)
		admin.POST("/backup", h.ImportBackup)

		// Live event stream for the dashboard
		admin.GET("/events", h.Events)
	}

	return h
}
