package domain

import "time"

// RequestStatus is the lifecycle of a money-movement request.
// Transitions are pending -> approved or pending -> rejected, never back.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

type Deposit struct {
	ID            int64         `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	Amount        float64       `db:"amount" json:"amount"`
	Method        string        `db:"method" json:"method"`
	TransactionID string        `db:"transaction_id" json:"transaction_id"`
	Screenshot    string        `db:"screenshot" json:"screenshot,omitempty"`
	Status        RequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	ProcessedAt   *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
}

type Withdrawal struct {
	ID             int64         `db:"id" json:"id"`
	UserID         int64         `db:"user_id" json:"user_id"`
	Amount         float64       `db:"amount" json:"amount"`
	Method         string        `db:"method" json:"method"`
	AccountDetails string        `db:"account_details" json:"account_details"`
	Status         RequestStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	ProcessedAt    *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
}

// CoinPurchase converts PKR into coins at the coin rate captured when the
// request was created, not when the admin approves it.
type CoinPurchase struct {
	ID            int64         `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	PkrAmount     float64       `db:"pkr_amount" json:"pkr_amount"`
	CoinAmount    int64         `db:"coin_amount" json:"coin_amount"`
	Method        string        `db:"method" json:"method"`
	TransactionID string        `db:"transaction_id" json:"transaction_id"`
	Screenshot    string        `db:"screenshot" json:"screenshot,omitempty"`
	Status        RequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	ProcessedAt   *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
}
