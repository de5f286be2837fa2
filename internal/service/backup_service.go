package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidBackup = errors.New("invalid backup payload")

// BackupUser is the backup-file shape of a user row. It exists because
// domain.User hides the password hash from API responses, and a restore
// without hashes would lock every account out.
type BackupUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	ReferralCode string    `json:"referral_code"`
	ReferredBy   string    `json:"referred_by,omitempty"`
	PkrBalance   float64   `json:"pkr_balance"`
	CoinBalance  int64     `json:"coin_balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Backup is the full platform state as one JSON document.
type Backup struct {
	ExportDate    string                    `json:"export_date"`
	Users         []BackupUser              `json:"users"`
	Deposits      []domain.Deposit          `json:"deposits"`
	Withdrawals   []domain.Withdrawal       `json:"withdrawals"`
	CoinPurchases []domain.CoinPurchase     `json:"coin_purchases"`
	Plans         []domain.Plan             `json:"plans"`
	Subscriptions []domain.Subscription     `json:"subscriptions"`
	RewardClaims  []domain.DailyRewardClaim `json:"reward_claims"`
	SpinResults   []domain.SpinResult       `json:"spin_results"`
	Transactions  []domain.Transaction      `json:"transactions"`
	Settings      []domain.Settings         `json:"settings"`
}

// Validate checks that every collection key was present in the payload
// (empty arrays are fine, missing ones are not) and that settings is usable.
func (b *Backup) Validate() error {
	for name, slicePresent := range map[string]bool{
		"users":          b.Users != nil,
		"deposits":       b.Deposits != nil,
		"withdrawals":    b.Withdrawals != nil,
		"coin_purchases": b.CoinPurchases != nil,
		"plans":          b.Plans != nil,
		"subscriptions":  b.Subscriptions != nil,
		"reward_claims":  b.RewardClaims != nil,
		"spin_results":   b.SpinResults != nil,
		"transactions":   b.Transactions != nil,
	} {
		if !slicePresent {
			return fmt.Errorf("%w: missing %s", ErrInvalidBackup, name)
		}
	}
	if len(b.Settings) == 0 || b.Settings[0].CoinRate <= 0 {
		return fmt.Errorf("%w: missing or empty settings", ErrInvalidBackup)
	}
	return nil
}

// BackupService exports and restores the whole dataset. Import is
// destructive: it truncates every table and reloads from the payload inside
// a single transaction, so a bad payload leaves the database untouched.
type BackupService struct {
	db *pgxpool.Pool
}

func NewBackupService(db *pgxpool.Pool) *BackupService {
	return &BackupService{db: db}
}

// allTables lists every table the backup covers, in an order that satisfies
// foreign keys on insert.
var allTables = []string{
	"users",
	"plans",
	"deposits",
	"withdrawals",
	"coin_purchases",
	"user_plans",
	"daily_reward_claims",
	"spin_results",
	"transactions",
	"system_settings",
}

// Export snapshots every table in one read-only transaction so the backup is
// internally consistent even while requests are being processed.
func (s *BackupService) Export(ctx context.Context) (*Backup, error) {
	b := &Backup{ExportDate: time.Now().UTC().Format(time.RFC3339)}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b.Users = []BackupUser{}
	rows, err := tx.Query(ctx, `
		SELECT id, email, password_hash, name, is_admin, referral_code, COALESCE(referred_by, ''),
		       pkr_balance, coin_balance, created_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var u BackupUser
		if err = rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.ReferralCode,
			&u.ReferredBy, &u.PkrBalance, &u.CoinBalance, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.Users = append(b.Users, u)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.Deposits = []domain.Deposit{}
	rows, err = tx.Query(ctx, `
		SELECT id, user_id, amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM deposits ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d domain.Deposit
		if err = rows.Scan(&d.ID, &d.UserID, &d.Amount, &d.Method, &d.TransactionID,
			&d.Screenshot, &d.Status, &d.CreatedAt, &d.ProcessedAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.Deposits = append(b.Deposits, d)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.Withdrawals = []domain.Withdrawal{}
	rows, err = tx.Query(ctx, `
		SELECT id, user_id, amount, method, account_details, status, created_at, processed_at
		FROM withdrawals ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var w domain.Withdrawal
		if err = rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.AccountDetails,
			&w.Status, &w.CreatedAt, &w.ProcessedAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.Withdrawals = append(b.Withdrawals, w)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.CoinPurchases = []domain.CoinPurchase{}
	rows, err = tx.Query(ctx, `
		SELECT id, user_id, pkr_amount, coin_amount, method, transaction_id, screenshot, status, created_at, processed_at
		FROM coin_purchases ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p domain.CoinPurchase
		if err = rows.Scan(&p.ID, &p.UserID, &p.PkrAmount, &p.CoinAmount, &p.Method,
			&p.TransactionID, &p.Screenshot, &p.Status, &p.CreatedAt, &p.ProcessedAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.CoinPurchases = append(b.CoinPurchases, p)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.Plans = []domain.Plan{}
	rows, err = tx.Query(ctx, `
		SELECT id, name, description, price, coin_requirement, duration_days, profit_rate, is_active
		FROM plans ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p domain.Plan
		if err = rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CoinRequirement,
			&p.DurationDays, &p.ProfitRate, &p.IsActive); err != nil {
			rows.Close()
			return nil, err
		}
		b.Plans = append(b.Plans, p)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.Subscriptions = []domain.Subscription{}
	rows, err = tx.Query(ctx, `
		SELECT id, user_id, plan_id, plan_name, purchase_date, expiry_date, duration_days, total_profit, profit_claimed
		FROM user_plans ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sub domain.Subscription
		if err = rows.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.PlanName, &sub.PurchaseDate,
			&sub.ExpiryDate, &sub.DurationDays, &sub.TotalProfit, &sub.ProfitClaimed); err != nil {
			rows.Close()
			return nil, err
		}
		b.Subscriptions = append(b.Subscriptions, sub)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.RewardClaims = []domain.DailyRewardClaim{}
	rows, err = tx.Query(ctx, `SELECT id, user_id, amount, claimed_at FROM daily_reward_claims ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c domain.DailyRewardClaim
		if err = rows.Scan(&c.ID, &c.UserID, &c.Amount, &c.ClaimedAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.RewardClaims = append(b.RewardClaims, c)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.SpinResults = []domain.SpinResult{}
	rows, err = tx.Query(ctx, `SELECT id, user_id, amount, spun_at FROM spin_results ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var r domain.SpinResult
		if err = rows.Scan(&r.ID, &r.UserID, &r.Amount, &r.SpunAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.SpinResults = append(b.SpinResults, r)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.Transactions = []domain.Transaction{}
	rows, err = tx.Query(ctx, `SELECT id, user_id, type, amount, description, created_at FROM transactions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t domain.Transaction
		if err = rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		b.Transactions = append(b.Transactions, t)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	b.Settings = []domain.Settings{}
	var st domain.Settings
	var valuesJSON, accountsJSON []byte
	err = tx.QueryRow(ctx, `
		SELECT id, coin_rate, referral_percentage, daily_reward_amount, daily_reward_enabled,
		       spin_wheel_enabled, spin_wheel_values, min_withdrawal, max_withdrawal, deposit_accounts
		FROM system_settings ORDER BY id LIMIT 1
	`).Scan(&st.ID, &st.CoinRate, &st.ReferralPercentage, &st.DailyRewardAmount, &st.DailyRewardEnabled,
		&st.SpinWheelEnabled, &valuesJSON, &st.MinWithdrawal, &st.MaxWithdrawal, &accountsJSON)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		if err = json.Unmarshal(valuesJSON, &st.SpinWheelValues); err != nil {
			return nil, err
		}
		if err = json.Unmarshal(accountsJSON, &st.DepositAccounts); err != nil {
			return nil, err
		}
		b.Settings = append(b.Settings, st)
	}

	return b, tx.Commit(ctx)
}

// Import replaces the entire dataset with the backup contents. All tables
// are truncated and reloaded in one transaction; sequences are bumped past
// the highest restored id.
func (s *BackupService) Import(ctx context.Context, b *Backup) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range allTables {
		if _, err = tx.Exec(ctx, fmt.Sprintf(`TRUNCATE %s RESTART IDENTITY CASCADE`, table)); err != nil {
			return err
		}
	}

	for _, u := range b.Users {
		var referredBy *string
		if u.ReferredBy != "" {
			rb := u.ReferredBy
			referredBy = &rb
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, is_admin, referral_code, referred_by, pkr_balance, coin_balance, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.ReferralCode, referredBy,
			u.PkrBalance, u.CoinBalance, u.CreatedAt); err != nil {
			return err
		}
	}

	for _, p := range b.Plans {
		if _, err = tx.Exec(ctx, `
			INSERT INTO plans (id, name, description, price, coin_requirement, duration_days, profit_rate, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.ID, p.Name, p.Description, p.Price, p.CoinRequirement, p.DurationDays, p.ProfitRate, p.IsActive); err != nil {
			return err
		}
	}

	for _, d := range b.Deposits {
		if _, err = tx.Exec(ctx, `
			INSERT INTO deposits (id, user_id, amount, method, transaction_id, screenshot, status, created_at, processed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, d.ID, d.UserID, d.Amount, d.Method, d.TransactionID, d.Screenshot, d.Status, d.CreatedAt, d.ProcessedAt); err != nil {
			return err
		}
	}

	for _, w := range b.Withdrawals {
		if _, err = tx.Exec(ctx, `
			INSERT INTO withdrawals (id, user_id, amount, method, account_details, status, created_at, processed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, w.ID, w.UserID, w.Amount, w.Method, w.AccountDetails, w.Status, w.CreatedAt, w.ProcessedAt); err != nil {
			return err
		}
	}

	for _, p := range b.CoinPurchases {
		if _, err = tx.Exec(ctx, `
			INSERT INTO coin_purchases (id, user_id, pkr_amount, coin_amount, method, transaction_id, screenshot, status, created_at, processed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, p.ID, p.UserID, p.PkrAmount, p.CoinAmount, p.Method, p.TransactionID, p.Screenshot,
			p.Status, p.CreatedAt, p.ProcessedAt); err != nil {
			return err
		}
	}

	for _, sub := range b.Subscriptions {
		if _, err = tx.Exec(ctx, `
			INSERT INTO user_plans (id, user_id, plan_id, plan_name, purchase_date, expiry_date, duration_days, total_profit, profit_claimed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, sub.ID, sub.UserID, sub.PlanID, sub.PlanName, sub.PurchaseDate, sub.ExpiryDate,
			sub.DurationDays, sub.TotalProfit, sub.ProfitClaimed); err != nil {
			return err
		}
	}

	for _, c := range b.RewardClaims {
		if _, err = tx.Exec(ctx, `
			INSERT INTO daily_reward_claims (id, user_id, amount, claimed_at)
			VALUES ($1, $2, $3, $4)
		`, c.ID, c.UserID, c.Amount, c.ClaimedAt); err != nil {
			return err
		}
	}

	for _, r := range b.SpinResults {
		if _, err = tx.Exec(ctx, `
			INSERT INTO spin_results (id, user_id, amount, spun_at)
			VALUES ($1, $2, $3, $4)
		`, r.ID, r.UserID, r.Amount, r.SpunAt); err != nil {
			return err
		}
	}

	for _, t := range b.Transactions {
		if _, err = tx.Exec(ctx, `
			INSERT INTO transactions (id, user_id, type, amount, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.ID, t.UserID, t.Type, t.Amount, t.Description, t.CreatedAt); err != nil {
			return err
		}
	}

	st := b.Settings[0]
	valuesJSON, err := json.Marshal(st.SpinWheelValues)
	if err != nil {
		return err
	}
	accountsJSON, err := json.Marshal(st.DepositAccounts)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO system_settings (coin_rate, referral_percentage, daily_reward_amount, daily_reward_enabled,
		                             spin_wheel_enabled, spin_wheel_values, min_withdrawal, max_withdrawal, deposit_accounts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, st.CoinRate, st.ReferralPercentage, st.DailyRewardAmount, st.DailyRewardEnabled,
		st.SpinWheelEnabled, valuesJSON, st.MinWithdrawal, st.MaxWithdrawal, accountsJSON); err != nil {
		return err
	}

	// Bump each serial past the highest restored id so new inserts do not
	// collide with restored rows.
	for _, table := range allTables {
		if table == "system_settings" {
			continue
		}
		if _, err = tx.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
			table, table)); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("backup imported",
		"users", len(b.Users),
		"transactions", len(b.Transactions),
		"export_date", b.ExportDate,
	)
	return nil
}
