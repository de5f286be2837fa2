package repository

import (
	"context"
	"errors"
	"time"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RewardRepository struct {
	db *pgxpool.Pool
}

func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// LastClaim returns the user's most recent daily reward claim, or ErrNotFound
// if they have never claimed.
func (r *RewardRepository) LastClaim(ctx context.Context, userID int64) (*domain.DailyRewardClaim, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, claimed_at
		FROM daily_reward_claims
		WHERE user_id = $1
		ORDER BY claimed_at DESC
		LIMIT 1
	`, userID)

	var c domain.DailyRewardClaim
	if err := row.Scan(&c.ID, &c.UserID, &c.Amount, &c.ClaimedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateClaimWithTx records a claim inside the crediting transaction.
func (r *RewardRepository) CreateClaimWithTx(ctx context.Context, tx pgx.Tx, c *domain.DailyRewardClaim) error {
	return tx.QueryRow(ctx, `
		INSERT INTO daily_reward_claims (user_id, amount, claimed_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.UserID, c.Amount, c.ClaimedAt).Scan(&c.ID)
}

// CountSpinsSince counts spins at or after the given instant (local midnight
// for the calendar-day limit).
func (r *RewardRepository) CountSpinsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM spin_results WHERE user_id = $1 AND spun_at >= $2
	`, userID, since).Scan(&count)
	return count, err
}

// CreateSpinWithTx records a spin result inside the crediting transaction.
func (r *RewardRepository) CreateSpinWithTx(ctx context.Context, tx pgx.Tx, s *domain.SpinResult) error {
	return tx.QueryRow(ctx, `
		INSERT INTO spin_results (user_id, amount, spun_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, s.UserID, s.Amount, s.SpunAt).Scan(&s.ID)
}

// GetSpinsByUserID returns a user's spin history, newest first.
func (r *RewardRepository) GetSpinsByUserID(ctx context.Context, userID int64, limit int) ([]domain.SpinResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, spun_at
		FROM spin_results
		WHERE user_id = $1
		ORDER BY spun_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spins []domain.SpinResult
	for rows.Next() {
		var s domain.SpinResult
		if err := rows.Scan(&s.ID, &s.UserID, &s.Amount, &s.SpunAt); err != nil {
			return nil, err
		}
		spins = append(spins, s)
	}
	return spins, rows.Err()
}
