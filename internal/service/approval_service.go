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
	ErrRequestNotFound   = errors.New("request not found")
	ErrAlreadyProcessed  = errors.New("request already processed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
)

// ApprovalService processes pending deposit, withdrawal and coin purchase
// requests. Every approval is a single database transaction: the status flip,
// the balance mutation and the audit transaction commit together or not at
// all. The status flip is guarded by WHERE status = 'pending', so a second
// approve or reject of the same request is a no-op error, never a double
// credit.
type ApprovalService struct {
	db              *pgxpool.Pool
	transactionRepo *repository.TransactionRepository
	settingsRepo    *repository.SettingsRepository
	hub             *events.Hub
}

func NewApprovalService(db *pgxpool.Pool, hub *events.Hub) *ApprovalService {
	return &ApprovalService{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
		settingsRepo:    repository.NewSettingsRepository(db),
		hub:             hub,
	}
}

// ApproveDeposit credits the depositor, records the audit transaction and
// pays referral commission when this is the user's first approved deposit.
func (s *ApprovalService) ApproveDeposit(ctx context.Context, depositID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		userID int64
		amount float64
		method string
		status domain.RequestStatus
	)
	err = tx.QueryRow(ctx, `
		SELECT user_id, amount, method, status FROM deposits WHERE id = $1 FOR UPDATE
	`, depositID).Scan(&userID, &amount, &method, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if status != domain.StatusPending {
		return ErrAlreadyProcessed
	}

	var depositorName, referredBy string
	err = tx.QueryRow(ctx, `
		SELECT name, COALESCE(referred_by, '') FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&depositorName, &referredBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE deposits SET status = 'approved', processed_at = $2 WHERE id = $1
	`, depositID, time.Now()); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET pkr_balance = pkr_balance + $1 WHERE id = $2
	`, amount, userID); err != nil {
		return err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxDeposit,
		Amount:      amount,
		Description: fmt.Sprintf("Deposit via %s", method),
	}); err != nil {
		return err
	}

	if err = s.payReferralCommission(ctx, tx, depositID, userID, depositorName, referredBy, amount); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	ApprovalsProcessed.WithLabelValues("deposit", "approved").Inc()
	s.hub.Publish(events.RequestProcessed, userID, map[string]any{
		"request": "deposit", "id": depositID, "status": "approved", "amount": amount,
	})
	return nil
}

// payReferralCommission credits the referrer on the depositor's first ever
// approved deposit. An unresolvable referral code is skipped silently:
// linkage was only validated at registration and is best-effort here.
func (s *ApprovalService) payReferralCommission(ctx context.Context, tx pgx.Tx, depositID, userID int64, depositorName, referredBy string, amount float64) error {
	if referredBy == "" {
		return nil
	}

	// The current deposit is already approved at this point, so exclude it.
	var prior int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM deposits WHERE user_id = $1 AND status = 'approved' AND id <> $2
	`, userID, depositID).Scan(&prior); err != nil {
		return err
	}
	if prior > 0 {
		return nil
	}

	var referrerID int64
	err := tx.QueryRow(ctx, `
		SELECT id FROM users WHERE referral_code = $1
	`, referredBy).Scan(&referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("referral code no longer resolves, skipping commission",
				"code", referredBy, "deposit_id", depositID)
			return nil
		}
		return err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	commission := amount * settings.ReferralPercentage / 100

	if _, err = tx.Exec(ctx, `
		UPDATE users SET pkr_balance = pkr_balance + $1 WHERE id = $2
	`, commission, referrerID); err != nil {
		return err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      referrerID,
		Type:        domain.TxReferralCommission,
		Amount:      commission,
		Description: fmt.Sprintf("Referral commission from %s", depositorName),
	}); err != nil {
		return err
	}

	ReferralCommissionsPaid.Inc()
	return nil
}

// ApproveWithdrawal debits the user. The balance is re-checked under lock at
// approval time; if it has dropped below the requested amount since the
// request was created the approval fails and the request stays pending for
// the admin to retry or reject.
func (s *ApprovalService) ApproveWithdrawal(ctx context.Context, withdrawalID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		userID int64
		amount float64
		method string
		status domain.RequestStatus
	)
	err = tx.QueryRow(ctx, `
		SELECT user_id, amount, method, status FROM withdrawals WHERE id = $1 FOR UPDATE
	`, withdrawalID).Scan(&userID, &amount, &method, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if status != domain.StatusPending {
		return ErrAlreadyProcessed
	}

	var balance float64
	err = tx.QueryRow(ctx, `
		SELECT pkr_balance FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	if _, err = tx.Exec(ctx, `
		UPDATE withdrawals SET status = 'approved', processed_at = $2 WHERE id = $1
	`, withdrawalID, time.Now()); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users SET pkr_balance = pkr_balance - $1 WHERE id = $2
	`, amount, userID); err != nil {
		return err
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxWithdrawal,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal via %s", method),
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	ApprovalsProcessed.WithLabelValues("withdrawal", "approved").Inc()
	s.hub.Publish(events.RequestProcessed, userID, map[string]any{
		"request": "withdrawal", "id": withdrawalID, "status": "approved", "amount": amount,
	})
	return nil
}

// ApproveCoinPurchase credits the coins computed at request-creation time.
func (s *ApprovalService) ApproveCoinPurchase(ctx context.Context, purchaseID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		userID     int64
		pkrAmount  float64
		coinAmount int64
		status     domain.RequestStatus
	)
	err = tx.QueryRow(ctx, `
		SELECT user_id, pkr_amount, coin_amount, status FROM coin_purchases WHERE id = $1 FOR UPDATE
	`, purchaseID).Scan(&userID, &pkrAmount, &coinAmount, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if status != domain.StatusPending {
		return ErrAlreadyProcessed
	}

	if _, err = tx.Exec(ctx, `
		UPDATE coin_purchases SET status = 'approved', processed_at = $2 WHERE id = $1
	`, purchaseID, time.Now()); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		UPDATE users SET coin_balance = coin_balance + $1 WHERE id = $2
	`, coinAmount, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if err = s.transactionRepo.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxCoinPurchase,
		Amount:      float64(coinAmount),
		Description: fmt.Sprintf("Purchased %d coins for %.2f PKR", coinAmount, pkrAmount),
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	ApprovalsProcessed.WithLabelValues("coin_purchase", "approved").Inc()
	s.hub.Publish(events.RequestProcessed, userID, map[string]any{
		"request": "coin_purchase", "id": purchaseID, "status": "approved", "coins": coinAmount,
	})
	return nil
}

// RequestKind names one of the three reviewable tables.
type RequestKind string

const (
	KindDeposit      RequestKind = "deposit"
	KindWithdrawal   RequestKind = "withdrawal"
	KindCoinPurchase RequestKind = "coin_purchase"
)

func (k RequestKind) table() string {
	switch k {
	case KindDeposit:
		return "deposits"
	case KindWithdrawal:
		return "withdrawals"
	case KindCoinPurchase:
		return "coin_purchases"
	}
	return ""
}

// Reject flips a pending request to rejected. No balance changes, no audit
// transaction. Rejecting an already-processed request returns
// ErrAlreadyProcessed.
func (s *ApprovalService) Reject(ctx context.Context, kind RequestKind, id int64) error {
	table := kind.table()
	if table == "" {
		return fmt.Errorf("unknown request kind %q", kind)
	}

	var userID int64
	err := s.db.QueryRow(ctx, `
		UPDATE `+table+` SET status = 'rejected', processed_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING user_id
	`, id, time.Now()).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish missing from already processed.
			var exists bool
			if err2 := s.db.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id,
			).Scan(&exists); err2 == nil && !exists {
				return ErrRequestNotFound
			}
			return ErrAlreadyProcessed
		}
		return err
	}

	ApprovalsProcessed.WithLabelValues(string(kind), "rejected").Inc()
	s.hub.Publish(events.RequestProcessed, userID, map[string]any{
		"request": string(kind), "id": id, "status": "rejected",
	})
	return nil
}
