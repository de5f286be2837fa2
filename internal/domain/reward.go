package domain

import "time"

type DailyRewardClaim struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Amount    int64     `db:"amount" json:"amount"`
	ClaimedAt time.Time `db:"claimed_at" json:"claimed_at"`
}

type SpinResult struct {
	ID     int64     `db:"id" json:"id"`
	UserID int64     `db:"user_id" json:"user_id"`
	Amount int64     `db:"amount" json:"amount"`
	SpunAt time.Time `db:"spun_at" json:"spun_at"`
}
