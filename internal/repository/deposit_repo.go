package repository

import (
	"context"
	"errors"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DepositRepository struct {
	db *pgxpool.Pool
}

func NewDepositRepository(db *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: db}
}

// GetByID retrieves deposit by ID
func (r *DepositRepository) GetByID(ctx context.Context, id int64) (*domain.Deposit, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM deposits
		WHERE id = $1
	`, id)

	return scanDeposit(row)
}

// GetByUserID retrieves deposits for a user, newest first
func (r *DepositRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Deposit, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeposits(rows)
}

// GetPending retrieves all pending deposits, oldest first
func (r *DepositRepository) GetPending(ctx context.Context) ([]domain.Deposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM deposits
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeposits(rows)
}

// Create creates a new pending deposit request
func (r *DepositRepository) Create(ctx context.Context, d *domain.Deposit) error {
	d.Status = domain.StatusPending
	return r.db.QueryRow(ctx, `
		INSERT INTO deposits (user_id, amount, method, transaction_id, screenshot, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, d.UserID, d.Amount, d.Method, d.TransactionID, d.Screenshot, d.Status).Scan(&d.ID, &d.CreatedAt)
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var d domain.Deposit
	if err := row.Scan(
		&d.ID, &d.UserID, &d.Amount, &d.Method, &d.TransactionID, &d.Screenshot,
		&d.Status, &d.CreatedAt, &d.ProcessedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanDeposits(rows pgx.Rows) ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	for rows.Next() {
		var d domain.Deposit
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Amount, &d.Method, &d.TransactionID, &d.Screenshot,
			&d.Status, &d.CreatedAt, &d.ProcessedAt,
		); err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}
