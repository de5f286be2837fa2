package repository

import (
	"context"
	"errors"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// GetByID retrieves withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, method, account_details, status, created_at, processed_at
		FROM withdrawals
		WHERE id = $1
	`, id)

	return scanWithdrawal(row)
}

// GetByUserID retrieves withdrawals for a user, newest first
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, method, account_details, status, created_at, processed_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// GetPending retrieves all pending withdrawals, oldest first
func (r *WithdrawalRepository) GetPending(ctx context.Context) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, method, account_details, status, created_at, processed_at
		FROM withdrawals
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// Create creates a new pending withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	w.Status = domain.StatusPending
	return r.db.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, method, account_details, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, w.UserID, w.Amount, w.Method, w.AccountDetails, w.Status).Scan(&w.ID, &w.CreatedAt)
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	if err := row.Scan(
		&w.ID, &w.UserID, &w.Amount, &w.Method, &w.AccountDetails,
		&w.Status, &w.CreatedAt, &w.ProcessedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func scanWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Amount, &w.Method, &w.AccountDetails,
			&w.Status, &w.CreatedAt, &w.ProcessedAt,
		); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}
