package domain

// DepositAccount is a manual payment destination shown to users on the
// deposit form.
type DepositAccount struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Settings is the singleton platform configuration row.
type Settings struct {
	ID                 int64                     `db:"id" json:"id"`
	CoinRate           float64                   `db:"coin_rate" json:"coin_rate"`
	ReferralPercentage float64                   `db:"referral_percentage" json:"referral_percentage"`
	DailyRewardAmount  int64                     `db:"daily_reward_amount" json:"daily_reward_amount"`
	DailyRewardEnabled bool                      `db:"daily_reward_enabled" json:"daily_reward_enabled"`
	SpinWheelEnabled   bool                      `db:"spin_wheel_enabled" json:"spin_wheel_enabled"`
	SpinWheelValues    []int64                   `db:"spin_wheel_values" json:"spin_wheel_values"`
	MinWithdrawal      float64                   `db:"min_withdrawal" json:"min_withdrawal"`
	MaxWithdrawal      float64                   `db:"max_withdrawal" json:"max_withdrawal"`
	DepositAccounts    map[string]DepositAccount `db:"deposit_accounts" json:"deposit_accounts"`
}

// DefaultSettings seeds the settings row on first boot.
func DefaultSettings() *Settings {
	return &Settings{
		CoinRate:           10,
		ReferralPercentage: 50,
		DailyRewardAmount:  100,
		DailyRewardEnabled: true,
		SpinWheelEnabled:   true,
		SpinWheelValues:    []int64{50, 100, 150, 200, 250, 300, 500, 1000},
		MinWithdrawal:      500,
		MaxWithdrawal:      50000,
		DepositAccounts: map[string]DepositAccount{
			"easypaisa": {Name: "Platform Account", Number: "03000000000"},
			"sadapay":   {Name: "Platform Account", Number: "03000000000"},
		},
	}
}
