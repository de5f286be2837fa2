package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/logger"
	"rtr_earnings/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanInactive      = errors.New("plan is not active")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// accrualEpsilon suppresses sub-paisa floating point churn: credits smaller
// than this are deferred to the next sweep.
const accrualEpsilon = 0.01

// PlanService handles plan purchases and the daily profit accrual sweep.
type PlanService struct {
	db               *pgxpool.Pool
	planRepo         *repository.PlanRepository
	subscriptionRepo *repository.SubscriptionRepository
	transactionRepo  *repository.TransactionRepository
	hub              *events.Hub
}

func NewPlanService(db *pgxpool.Pool, hub *events.Hub) *PlanService {
	return &PlanService{
		db:               db,
		planRepo:         repository.NewPlanRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
		transactionRepo:  repository.NewTransactionRepository(db),
		hub:              hub,
	}
}

// Purchase buys a plan for a user. The PKR and coin debits, the subscription
// row and the audit transaction are one atomic unit; any failed precondition
// leaves state untouched.
func (s *PlanService) Purchase(ctx context.Context, userID, planID int64) (*domain.Subscription, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var pkrBalance float64
	var coinBalance int64
	err = tx.QueryRow(ctx, `
		SELECT pkr_balance, coin_balance FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&pkrBalance, &coinBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if pkrBalance < plan.Price {
		return nil, ErrInsufficientFunds
	}
	if coinBalance < plan.CoinRequirement {
		return nil, ErrInsufficientCoins
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET pkr_balance = pkr_balance - $1, coin_balance = coin_balance - $2 WHERE id = $3
	`, plan.Price, plan.CoinRequirement, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &domain.Subscription{
		UserID:       userID,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
		PurchaseDate: now,
		ExpiryDate:   now.AddDate(0, 0, plan.DurationDays),
		DurationDays: plan.DurationDays,
		TotalProfit:  plan.Price * plan.ProfitRate / 100,
	}
	if err = s.subscriptionRepo.CreateWithTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxPlanPurchase,
		Amount:      plan.Price,
		Description: fmt.Sprintf("Purchased %s", plan.Name),
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.hub.Publish(events.BalanceChanged, userID, map[string]any{
		"reason": "plan_purchase", "plan": plan.Name, "price": plan.Price,
	})
	return sub, nil
}

// ExpectedProfit computes how much profit a subscription should have paid
// out by now: linear accrual per full elapsed day, capped at the total.
func ExpectedProfit(totalProfit float64, durationDays int, purchaseDate, now time.Time) float64 {
	if durationDays <= 0 {
		return 0
	}
	daysPassed := int(now.Sub(purchaseDate).Hours() / 24)
	if daysPassed < 0 {
		daysPassed = 0
	}
	daily := totalProfit / float64(durationDays)
	expected := daily * float64(daysPassed)
	if expected > totalProfit {
		expected = totalProfit
	}
	return expected
}

// AccrueProfits sweeps all unexpired subscriptions and credits any profit
// earned since the last sweep. Each subscription is processed in its own
// transaction with the row locked, so concurrent sweeps cannot double-credit
// and a failure on one subscription does not roll back the others. The sweep
// is idempotent: an immediate re-run finds nothing above the epsilon.
func (s *PlanService) AccrueProfits(ctx context.Context) (int, error) {
	now := time.Now()
	ids, err := s.subscriptionRepo.GetUnexpiredIDs(ctx, now)
	if err != nil {
		return 0, err
	}

	credited := 0
	for _, id := range ids {
		applied, err := s.accrueOne(ctx, id, now)
		if err != nil {
			logger.Error("profit accrual failed for subscription", "subscription_id", id, "error", err)
			continue
		}
		if applied {
			credited++
		}
	}
	return credited, nil
}

func (s *PlanService) accrueOne(ctx context.Context, subscriptionID int64, now time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		userID        int64
		planName      string
		purchaseDate  time.Time
		durationDays  int
		totalProfit   float64
		profitClaimed float64
	)
	err = tx.QueryRow(ctx, `
		SELECT user_id, plan_name, purchase_date, duration_days, total_profit, profit_claimed
		FROM user_plans
		WHERE id = $1
		FOR UPDATE
	`, subscriptionID).Scan(&userID, &planName, &purchaseDate, &durationDays, &totalProfit, &profitClaimed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil // deleted mid-sweep
		}
		return false, err
	}

	expected := ExpectedProfit(totalProfit, durationDays, purchaseDate, now)
	unclaimed := expected - profitClaimed
	if unclaimed <= accrualEpsilon {
		return false, tx.Commit(ctx)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE user_plans SET profit_claimed = $1 WHERE id = $2
	`, expected, subscriptionID); err != nil {
		return false, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET pkr_balance = pkr_balance + $1 WHERE id = $2
	`, unclaimed, userID); err != nil {
		return false, err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxPlanProfit,
		Amount:      unclaimed,
		Description: fmt.Sprintf("Profit from %s", planName),
	}); err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}

	ProfitAccruals.Inc()
	s.hub.Publish(events.ProfitAccrued, userID, map[string]any{
		"subscription_id": subscriptionID, "amount": unclaimed,
	})
	return true, nil
}

// RunAccrualLoop drives the sweep on a ticker until the context is
// cancelled. Missed or delayed runs are harmless: accrual is computed from
// absolute elapsed time, so the next run catches up.
func (s *PlanService) RunAccrualLoop(ctx context.Context, interval time.Duration) {
	// Sweep once at startup to catch up after downtime.
	if _, err := s.AccrueProfits(ctx); err != nil {
		logger.Error("initial profit accrual failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.AccrueProfits(ctx); err != nil {
				logger.Error("profit accrual sweep failed", "error", err)
			}
		}
	}
}
