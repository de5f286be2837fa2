package service

import (
	"context"
	"errors"
	"fmt"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/logger"
	"rtr_earnings/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCannotDeleteAdmin = errors.New("cannot delete an admin account")
	ErrNoAdjustment      = errors.New("nothing to adjust")
)

// AdminService covers the operator surface: user management, balance
// adjustments, platform settings and first-boot seeding.
type AdminService struct {
	db              *pgxpool.Pool
	userRepo        *repository.UserRepository
	planRepo        *repository.PlanRepository
	settingsRepo    *repository.SettingsRepository
	transactionRepo *repository.TransactionRepository
	hub             *events.Hub
}

func NewAdminService(db *pgxpool.Pool, hub *events.Hub) *AdminService {
	return &AdminService{
		db:              db,
		userRepo:        repository.NewUserRepository(db),
		planRepo:        repository.NewPlanRepository(db),
		settingsRepo:    repository.NewSettingsRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		hub:             hub,
	}
}

// userOwnedTables lists every table holding rows keyed by user_id, in delete
// order. The users row itself goes last.
var userOwnedTables = []string{
	"deposits",
	"withdrawals",
	"coin_purchases",
	"user_plans",
	"daily_reward_claims",
	"spin_results",
	"transactions",
}

// DeleteUser removes a user and all their records in one transaction. Admin
// accounts cannot be deleted through this path.
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var isAdmin bool
	err = tx.QueryRow(ctx, `
		SELECT is_admin FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if isAdmin {
		return ErrCannotDeleteAdmin
	}

	for _, table := range userOwnedTables {
		if _, err = tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userID,
		); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("user deleted", "user_id", userID)
	return nil
}

// AdjustBalance applies admin-initiated balance corrections. PKR deltas are
// recorded as deposits or withdrawals with positive amounts; coin deltas get
// their own transaction type so they are not mistaken for reward payouts,
// and carry a signed amount because the type has no direction.
func (s *AdminService) AdjustBalance(ctx context.Context, userID int64, pkrDelta float64, coinDelta int64) error {
	if pkrDelta == 0 && coinDelta == 0 {
		return ErrNoAdjustment
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var pkrBalance float64
	var coinBalance int64
	err = tx.QueryRow(ctx, `
		SELECT pkr_balance, coin_balance FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&pkrBalance, &coinBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if pkrBalance+pkrDelta < 0 {
		return ErrInsufficientFunds
	}
	if coinBalance+coinDelta < 0 {
		return ErrInsufficientCoins
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET pkr_balance = pkr_balance + $1, coin_balance = coin_balance + $2
		WHERE id = $3
	`, pkrDelta, coinDelta, userID); err != nil {
		return err
	}

	if pkrDelta != 0 {
		// deposit/withdrawal rows always carry positive magnitudes, the
		// type encodes the direction
		txType := domain.TxDeposit
		desc := "Admin balance credit"
		amount := pkrDelta
		if pkrDelta < 0 {
			txType = domain.TxWithdrawal
			desc = "Admin balance debit"
			amount = -pkrDelta
		}
		if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
			UserID:      userID,
			Type:        txType,
			Amount:      amount,
			Description: desc,
		}); err != nil {
			return err
		}
	}

	if coinDelta != 0 {
		if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
			UserID:      userID,
			Type:        domain.TxAdminAdjustment,
			Amount:      float64(coinDelta),
			Description: "Admin coin adjustment",
		}); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("balance adjusted", "user_id", userID, "pkr_delta", pkrDelta, "coin_delta", coinDelta)
	s.hub.Publish(events.BalanceChanged, userID, map[string]any{
		"reason": "admin_adjustment", "pkr_delta": pkrDelta, "coin_delta": coinDelta,
	})
	return nil
}

func (s *AdminService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettings overwrites the singleton row, keeping its primary key.
func (s *AdminService) UpdateSettings(ctx context.Context, updated *domain.Settings) error {
	current, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	updated.ID = current.ID
	return s.settingsRepo.Update(ctx, updated)
}

// starterPlans are seeded on an empty plans table.
var starterPlans = []domain.Plan{
	{Name: "Starter", Description: "Entry plan for new investors", Price: 1000, CoinRequirement: 50, DurationDays: 30, ProfitRate: 10, IsActive: true},
	{Name: "Growth", Description: "Mid-tier plan with a longer run", Price: 5000, CoinRequirement: 200, DurationDays: 45, ProfitRate: 15, IsActive: true},
	{Name: "Premium", Description: "Top-tier plan for large balances", Price: 10000, CoinRequirement: 500, DurationDays: 60, ProfitRate: 20, IsActive: true},
}

// Bootstrap seeds settings, starter plans and the admin account on first
// boot. Each piece is independent: an existing settings row does not stop
// plan seeding, and vice versa.
func (s *AdminService) Bootstrap(ctx context.Context, adminEmail, adminPassword string) error {
	settingsCount, err := s.settingsRepo.Count(ctx)
	if err != nil {
		return err
	}
	if settingsCount == 0 {
		if err = s.settingsRepo.Create(ctx, domain.DefaultSettings()); err != nil {
			return err
		}
		logger.Info("seeded default settings")
	}

	planCount, err := s.planRepo.Count(ctx)
	if err != nil {
		return err
	}
	if planCount == 0 {
		for i := range starterPlans {
			plan := starterPlans[i]
			if err = s.planRepo.Create(ctx, &plan); err != nil {
				return err
			}
		}
		logger.Info("seeded starter plans", "count", len(starterPlans))
	}

	adminCount, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if adminCount > 0 {
		return nil
	}
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("no admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD are not set")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		Name:         "Administrator",
		IsAdmin:      true,
		ReferralCode: repository.GenerateReferralCode(),
	}
	if err = s.userRepo.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("created bootstrap admin", "email", adminEmail)
	return nil
}
