package handlers

import (
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/repository"
	"rtr_earnings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB               *pgxpool.Pool
	UserRepo         *repository.UserRepository
	DepositRepo      *repository.DepositRepository
	WithdrawalRepo   *repository.WithdrawalRepository
	CoinPurchaseRepo *repository.CoinPurchaseRepository
	PlanRepo         *repository.PlanRepository
	SubscriptionRepo *repository.SubscriptionRepository
	RewardRepo       *repository.RewardRepository
	TransactionRepo  *repository.TransactionRepository
	SettingsRepo     *repository.SettingsRepository

	AuthService     *service.AuthService
	ApprovalService *service.ApprovalService
	PlanService     *service.PlanService
	RewardService   *service.RewardService
	AdminService    *service.AdminService
	BackupService   *service.BackupService

	Hub *events.Hub
}

func NewHandler(db *pgxpool.Pool, hub *events.Hub) *Handler {
	return &Handler{
		DB:               db,
		UserRepo:         repository.NewUserRepository(db),
		DepositRepo:      repository.NewDepositRepository(db),
		WithdrawalRepo:   repository.NewWithdrawalRepository(db),
		CoinPurchaseRepo: repository.NewCoinPurchaseRepository(db),
		PlanRepo:         repository.NewPlanRepository(db),
		SubscriptionRepo: repository.NewSubscriptionRepository(db),
		RewardRepo:       repository.NewRewardRepository(db),
		TransactionRepo:  repository.NewTransactionRepository(db),
		SettingsRepo:     repository.NewSettingsRepository(db),
		AuthService:      service.NewAuthService(db),
		ApprovalService:  service.NewApprovalService(db, hub),
		PlanService:      service.NewPlanService(db, hub),
		RewardService:    service.NewRewardService(db, hub),
		AdminService:     service.NewAdminService(db, hub),
		BackupService:    service.NewBackupService(db),
		Hub:              hub,
	}
}

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	userID, ok := uidVal.(int64)
	return userID, ok
}
