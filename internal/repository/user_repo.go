package repository

import (
	"context"
	"crypto/rand"
	"errors"

	"rtr_earnings/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const referralCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode returns a REF-prefixed random code. Uniqueness is
// enforced by the users.referral_code unique index; callers retry on conflict.
func GenerateReferralCode() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = referralCodeChars[int(b[i])%len(referralCodeChars)]
	}
	return "REF" + string(b)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, name, is_admin, referral_code, COALESCE(referred_by, ''),
		       pkr_balance, coin_balance, created_at
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, name, is_admin, referral_code, COALESCE(referred_by, ''),
		       pkr_balance, coin_balance, created_at
		FROM users
		WHERE email = $1
	`, email)

	return scanUser(row)
}

// GetByReferralCode resolves a referral code to its owner.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, name, is_admin, referral_code, COALESCE(referred_by, ''),
		       pkr_balance, coin_balance, created_at
		FROM users
		WHERE referral_code = $1
	`, code)

	return scanUser(row)
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	var referredBy *string
	if u.ReferredBy != "" {
		referredBy = &u.ReferredBy
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, is_admin, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.ReferralCode, referredBy).Scan(&u.ID, &u.CreatedAt)
}

// ReferralCount returns how many users registered with the given code.
func (r *UserRepository) ReferralCount(ctx context.Context, code string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE referred_by = $1`, code,
	).Scan(&count)
	return count, err
}

// UserSummary is a user row with the aggregates the admin table shows.
type UserSummary struct {
	domain.User
	TotalDeposit    float64 `json:"total_deposit"`
	TotalWithdrawal float64 `json:"total_withdrawal"`
	Referrals       int     `json:"referrals"`
}

// ListWithStats returns all non-admin users with approved deposit/withdrawal
// totals and referral counts.
func (r *UserRepository) ListWithStats(ctx context.Context) ([]UserSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.email, u.password_hash, u.name, u.is_admin, u.referral_code,
		       COALESCE(u.referred_by, ''), u.pkr_balance, u.coin_balance, u.created_at,
		       COALESCE(d.total, 0) AS total_deposit,
		       COALESCE(w.total, 0) AS total_withdrawal,
		       COALESCE(ref.cnt, 0) AS referrals
		FROM users u
		LEFT JOIN (
			SELECT user_id, SUM(amount) AS total FROM deposits WHERE status = 'approved' GROUP BY user_id
		) d ON d.user_id = u.id
		LEFT JOIN (
			SELECT user_id, SUM(amount) AS total FROM withdrawals WHERE status = 'approved' GROUP BY user_id
		) w ON w.user_id = u.id
		LEFT JOIN (
			SELECT referred_by, COUNT(*) AS cnt FROM users WHERE referred_by IS NOT NULL GROUP BY referred_by
		) ref ON ref.referred_by = u.referral_code
		WHERE NOT u.is_admin
		ORDER BY u.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UserSummary
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(
			&s.ID, &s.Email, &s.PasswordHash, &s.Name, &s.IsAdmin, &s.ReferralCode,
			&s.ReferredBy, &s.PkrBalance, &s.CoinBalance, &s.CreatedAt,
			&s.TotalDeposit, &s.TotalWithdrawal, &s.Referrals,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// CountAdmins reports how many admin accounts exist (used for bootstrap).
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_admin`).Scan(&count)
	return count, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.ReferralCode,
		&u.ReferredBy, &u.PkrBalance, &u.CoinBalance, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
