package repository

import (
	"context"
	"errors"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoinPurchaseRepository struct {
	db *pgxpool.Pool
}

func NewCoinPurchaseRepository(db *pgxpool.Pool) *CoinPurchaseRepository {
	return &CoinPurchaseRepository{db: db}
}

// GetByID retrieves coin purchase by ID
func (r *CoinPurchaseRepository) GetByID(ctx context.Context, id int64) (*domain.CoinPurchase, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, pkr_amount, coin_amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM coin_purchases
		WHERE id = $1
	`, id)

	return scanCoinPurchase(row)
}

// GetByUserID retrieves coin purchases for a user, newest first
func (r *CoinPurchaseRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.CoinPurchase, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, pkr_amount, coin_amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM coin_purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCoinPurchases(rows)
}

// GetPending retrieves all pending coin purchases, oldest first
func (r *CoinPurchaseRepository) GetPending(ctx context.Context) ([]domain.CoinPurchase, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, pkr_amount, coin_amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM coin_purchases
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCoinPurchases(rows)
}

// Create creates a new pending coin purchase request
func (r *CoinPurchaseRepository) Create(ctx context.Context, p *domain.CoinPurchase) error {
	p.Status = domain.StatusPending
	return r.db.QueryRow(ctx, `
		INSERT INTO coin_purchases (user_id, pkr_amount, coin_amount, method, transaction_id, screenshot, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.UserID, p.PkrAmount, p.CoinAmount, p.Method, p.TransactionID, p.Screenshot, p.Status).Scan(&p.ID, &p.CreatedAt)
}

func scanCoinPurchase(row pgx.Row) (*domain.CoinPurchase, error) {
	var p domain.CoinPurchase
	if err := row.Scan(
		&p.ID, &p.UserID, &p.PkrAmount, &p.CoinAmount, &p.Method, &p.TransactionID,
		&p.Screenshot, &p.Status, &p.CreatedAt, &p.ProcessedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanCoinPurchases(rows pgx.Rows) ([]domain.CoinPurchase, error) {
	var purchases []domain.CoinPurchase
	for rows.Next() {
		var p domain.CoinPurchase
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.PkrAmount, &p.CoinAmount, &p.Method, &p.TransactionID,
			&p.Screenshot, &p.Status, &p.CreatedAt, &p.ProcessedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
