package domain

import "time"

type Plan struct {
	ID              int64   `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Description     string  `db:"description" json:"description"`
	Price           float64 `db:"price" json:"price"`
	CoinRequirement int64   `db:"coin_requirement" json:"coin_requirement"`
	DurationDays    int     `db:"duration_days" json:"duration_days"`
	ProfitRate      float64 `db:"profit_rate" json:"profit_rate"`
	IsActive        bool    `db:"is_active" json:"is_active"`
}

// Subscription is one user's purchase of a plan. Terms (TotalProfit,
// DurationDays) are copied from the plan at purchase time so later plan edits
// never change an existing subscription.
type Subscription struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	PlanID        int64     `db:"plan_id" json:"plan_id"`
	PlanName      string    `db:"plan_name" json:"plan_name"`
	PurchaseDate  time.Time `db:"purchase_date" json:"purchase_date"`
	ExpiryDate    time.Time `db:"expiry_date" json:"expiry_date"`
	DurationDays  int       `db:"duration_days" json:"duration_days"`
	TotalProfit   float64   `db:"total_profit" json:"total_profit"`
	ProfitClaimed float64   `db:"profit_claimed" json:"profit_claimed"`
}

// Active reports whether the subscription is still accruing profit.
func (s *Subscription) Active(now time.Time) bool {
	return now.Before(s.ExpiryDate)
}
