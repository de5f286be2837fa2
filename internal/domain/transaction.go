package domain

import "time"

// Transaction types. Every balance change writes exactly one of these.
const (
	TxDeposit            = "deposit"
	TxWithdrawal         = "withdrawal"
	TxCoinPurchase       = "coin_purchase"
	TxPlanPurchase       = "plan_purchase"
	TxPlanProfit         = "plan_profit"
	TxDailyReward        = "daily_reward"
	TxSpinWheel          = "spin_wheel"
	TxReferralCommission = "referral_commission"
	TxAdminAdjustment    = "admin_adjustment"
)

// Transaction is an append-only audit entry. Rows are never updated or
// deleted except by cascading user deletion.
type Transaction struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Type        string    `db:"type" json:"type"`
	Amount      float64   `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
