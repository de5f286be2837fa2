package repository

import (
	"context"
	"errors"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, coin_requirement, duration_days, profit_rate, is_active
		FROM plans
		WHERE id = $1
	`, id)

	var p domain.Plan
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CoinRequirement,
		&p.DurationDays, &p.ProfitRate, &p.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetAll returns the full plan catalog, including inactive plans.
func (r *PlanRepository) GetAll(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, coin_requirement, duration_days, profit_rate, is_active
		FROM plans
		ORDER BY price ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlans(rows)
}

func (r *PlanRepository) Create(ctx context.Context, p *domain.Plan) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO plans (name, description, price, coin_requirement, duration_days, profit_rate, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.Name, p.Description, p.Price, p.CoinRequirement, p.DurationDays, p.ProfitRate, p.IsActive).Scan(&p.ID)
}

func (r *PlanRepository) Update(ctx context.Context, p *domain.Plan) error {
	result, err := r.db.Exec(ctx, `
		UPDATE plans
		SET name = $2, description = $3, price = $4, coin_requirement = $5,
		    duration_days = $6, profit_rate = $7, is_active = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.CoinRequirement, p.DurationDays, p.ProfitRate, p.IsActive)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count reports the catalog size (used for bootstrap seeding).
func (r *PlanRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count)
	return count, err
}

func scanPlans(rows pgx.Rows) ([]domain.Plan, error) {
	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.CoinRequirement,
			&p.DurationDays, &p.ProfitRate, &p.IsActive,
		); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
