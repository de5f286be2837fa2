package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRewardDisabled = errors.New("daily reward is disabled")
	ErrSpinDisabled   = errors.New("spin wheel is disabled")
	ErrCooldownActive = errors.New("reward not yet claimable")
	ErrNoSpinsLeft    = errors.New("no spins left today")
	ErrNoSpinValues   = errors.New("no spin values configured")
)

// dailyRewardCooldown is a rolling window from the last claim. The spin
// wheel uses a different rule: one per calendar day, reset at local
// midnight.
const dailyRewardCooldown = 24 * time.Hour

// RewardService handles the daily reward claim and the spin wheel.
type RewardService struct {
	db              *pgxpool.Pool
	rewardRepo      *repository.RewardRepository
	settingsRepo    *repository.SettingsRepository
	transactionRepo *repository.TransactionRepository
	hub             *events.Hub
}

func NewRewardService(db *pgxpool.Pool, hub *events.Hub) *RewardService {
	return &RewardService{
		db:              db,
		rewardRepo:      repository.NewRewardRepository(db),
		settingsRepo:    repository.NewSettingsRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		hub:             hub,
	}
}

// RewardStatus reports claimability for the UI.
type RewardStatus struct {
	CanClaim    bool       `json:"can_claim"`
	Amount      int64      `json:"amount"`
	LastClaimAt *time.Time `json:"last_claim_at,omitempty"`
	NextClaimAt *time.Time `json:"next_claim_at,omitempty"`
}

func (s *RewardService) DailyRewardStatus(ctx context.Context, userID int64) (*RewardStatus, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	status := &RewardStatus{Amount: settings.DailyRewardAmount}
	if !settings.DailyRewardEnabled {
		return status, nil
	}

	last, err := s.rewardRepo.LastClaim(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			status.CanClaim = true
			return status, nil
		}
		return nil, err
	}

	next := last.ClaimedAt.Add(dailyRewardCooldown)
	status.LastClaimAt = &last.ClaimedAt
	status.NextClaimAt = &next
	status.CanClaim = time.Now().After(next)
	return status, nil
}

// ClaimDailyReward credits the configured coin amount once per rolling 24
// hours. The last-claim check runs inside the crediting transaction with the
// user row locked, so two simultaneous claims cannot both pass the cooldown.
func (s *RewardService) ClaimDailyReward(ctx context.Context, userID int64) (*domain.DailyRewardClaim, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.DailyRewardEnabled {
		return nil, ErrRewardDisabled
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the user row first so concurrent claims serialize here.
	var exists bool
	if err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 FOR UPDATE)
	`, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	var lastClaimedAt time.Time
	err = tx.QueryRow(ctx, `
		SELECT claimed_at FROM daily_reward_claims
		WHERE user_id = $1
		ORDER BY claimed_at DESC
		LIMIT 1
	`, userID).Scan(&lastClaimedAt)
	if err == nil {
		if now.Sub(lastClaimedAt) < dailyRewardCooldown {
			return nil, ErrCooldownActive
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET coin_balance = coin_balance + $1 WHERE id = $2
	`, settings.DailyRewardAmount, userID); err != nil {
		return nil, err
	}

	claim := &domain.DailyRewardClaim{
		UserID:    userID,
		Amount:    settings.DailyRewardAmount,
		ClaimedAt: now,
	}
	if err = s.rewardRepo.CreateClaimWithTx(ctx, tx, claim); err != nil {
		return nil, err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxDailyReward,
		Amount:      float64(settings.DailyRewardAmount),
		Description: "Daily reward claimed",
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	RewardClaims.WithLabelValues("daily_reward").Inc()
	s.hub.Publish(events.BalanceChanged, userID, map[string]any{
		"reason": "daily_reward", "coins": settings.DailyRewardAmount,
	})
	return claim, nil
}

// PickSpinValue selects uniformly from the configured value list.
func PickSpinValue(values []int64) (int64, error) {
	if len(values) == 0 {
		return 0, ErrNoSpinValues
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(values))))
	if err != nil {
		return 0, err
	}
	return values[n.Int64()], nil
}

// startOfDay returns local midnight for the given instant.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SpinStatus reports remaining spins for the UI.
type SpinStatus struct {
	CanSpin    bool    `json:"can_spin"`
	SpinsToday int     `json:"spins_today"`
	Values     []int64 `json:"values"`
}

func (s *RewardService) SpinWheelStatus(ctx context.Context, userID int64) (*SpinStatus, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	status := &SpinStatus{Values: settings.SpinWheelValues}
	if !settings.SpinWheelEnabled {
		return status, nil
	}

	count, err := s.rewardRepo.CountSpinsSince(ctx, userID, startOfDay(time.Now()))
	if err != nil {
		return nil, err
	}
	status.SpinsToday = count
	status.CanSpin = count < 1
	return status, nil
}

// Spin plays the wheel: one spin per user per calendar day. The day count
// runs inside the crediting transaction under the user row lock.
func (s *RewardService) Spin(ctx context.Context, userID int64) (*domain.SpinResult, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.SpinWheelEnabled {
		return nil, ErrSpinDisabled
	}

	won, err := PickSpinValue(settings.SpinWheelValues)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 FOR UPDATE)
	`, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	var spinsToday int
	if err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM spin_results WHERE user_id = $1 AND spun_at >= $2
	`, userID, startOfDay(now)).Scan(&spinsToday); err != nil {
		return nil, err
	}
	if spinsToday >= 1 {
		return nil, ErrNoSpinsLeft
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET coin_balance = coin_balance + $1 WHERE id = $2
	`, won, userID); err != nil {
		return nil, err
	}

	result := &domain.SpinResult{
		UserID: userID,
		Amount: won,
		SpunAt: now,
	}
	if err = s.rewardRepo.CreateSpinWithTx(ctx, tx, result); err != nil {
		return nil, err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxSpinWheel,
		Amount:      float64(won),
		Description: fmt.Sprintf("Won %d coins from spin wheel", won),
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	RewardClaims.WithLabelValues("spin_wheel").Inc()
	s.hub.Publish(events.BalanceChanged, userID, map[string]any{
		"reason": "spin_wheel", "coins": won,
	})
	return result, nil
}
