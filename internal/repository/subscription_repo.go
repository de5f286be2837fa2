package repository

import (
	"context"
	"time"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateWithTx inserts a subscription inside an existing transaction, so the
// plan purchase debit and the subscription row commit together.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *domain.Subscription) error {
	return tx.QueryRow(ctx, `
		INSERT INTO user_plans (user_id, plan_id, plan_name, purchase_date, expiry_date, duration_days, total_profit, profit_claimed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
		RETURNING id
	`, s.UserID, s.PlanID, s.PlanName, s.PurchaseDate, s.ExpiryDate, s.DurationDays, s.TotalProfit).Scan(&s.ID)
}

// GetByUserID returns all of a user's subscriptions, newest first.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, plan_id, plan_name, purchase_date, expiry_date, duration_days, total_profit, profit_claimed
		FROM user_plans
		WHERE user_id = $1
		ORDER BY purchase_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// GetUnexpiredIDs returns ids of subscriptions still accruing at the given
// time. The accrual sweep locks and processes each one individually.
func (r *SubscriptionRepository) GetUnexpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM user_plans WHERE expiry_date > $1 ORDER BY id
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &s.PurchaseDate,
			&s.ExpiryDate, &s.DurationDays, &s.TotalProfit, &s.ProfitClaimed,
		); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
