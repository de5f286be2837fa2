package repository

import (
	"context"
	"encoding/json"
	"errors"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the singleton settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, coin_rate, referral_percentage, daily_reward_amount, daily_reward_enabled,
		       spin_wheel_enabled, spin_wheel_values, min_withdrawal, max_withdrawal, deposit_accounts
		FROM system_settings
		ORDER BY id
		LIMIT 1
	`)

	var s domain.Settings
	var valuesJSON, accountsJSON []byte
	if err := row.Scan(
		&s.ID, &s.CoinRate, &s.ReferralPercentage, &s.DailyRewardAmount, &s.DailyRewardEnabled,
		&s.SpinWheelEnabled, &valuesJSON, &s.MinWithdrawal, &s.MaxWithdrawal, &accountsJSON,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(valuesJSON, &s.SpinWheelValues); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(accountsJSON, &s.DepositAccounts); err != nil {
		return nil, err
	}

	return &s, nil
}

// Create inserts the settings row (bootstrap only).
func (r *SettingsRepository) Create(ctx context.Context, s *domain.Settings) error {
	valuesJSON, err := json.Marshal(s.SpinWheelValues)
	if err != nil {
		return err
	}
	accountsJSON, err := json.Marshal(s.DepositAccounts)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO system_settings (coin_rate, referral_percentage, daily_reward_amount, daily_reward_enabled,
		                             spin_wheel_enabled, spin_wheel_values, min_withdrawal, max_withdrawal, deposit_accounts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, s.CoinRate, s.ReferralPercentage, s.DailyRewardAmount, s.DailyRewardEnabled,
		s.SpinWheelEnabled, valuesJSON, s.MinWithdrawal, s.MaxWithdrawal, accountsJSON).Scan(&s.ID)
}

// Update overwrites the settings row.
func (r *SettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	valuesJSON, err := json.Marshal(s.SpinWheelValues)
	if err != nil {
		return err
	}
	accountsJSON, err := json.Marshal(s.DepositAccounts)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, `
		UPDATE system_settings
		SET coin_rate = $2, referral_percentage = $3, daily_reward_amount = $4,
		    daily_reward_enabled = $5, spin_wheel_enabled = $6, spin_wheel_values = $7,
		    min_withdrawal = $8, max_withdrawal = $9, deposit_accounts = $10
		WHERE id = $1
	`, s.ID, s.CoinRate, s.ReferralPercentage, s.DailyRewardAmount,
		s.DailyRewardEnabled, s.SpinWheelEnabled, valuesJSON,
		s.MinWithdrawal, s.MaxWithdrawal, accountsJSON)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count reports how many settings rows exist (bootstrap and backup import
// both refuse to leave the table empty).
func (r *SettingsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM system_settings`).Scan(&count)
	return count, err
}
