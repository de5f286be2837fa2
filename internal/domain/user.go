package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	ReferralCode string    `db:"referral_code" json:"referral_code"`
	ReferredBy   string    `db:"referred_by" json:"referred_by,omitempty"`
	PkrBalance   float64   `db:"pkr_balance" json:"pkr_balance"`
	CoinBalance  int64     `db:"coin_balance" json:"coin_balance"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
