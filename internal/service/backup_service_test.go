package service

import (
	"encoding/json"
	"errors"
	"testing"

	"rtr_earnings/internal/domain"
)

func validBackup() *Backup {
	return &Backup{
		ExportDate:    "2026-01-01T00:00:00Z",
		Users:         []BackupUser{},
		Deposits:      []domain.Deposit{},
		Withdrawals:   []domain.Withdrawal{},
		CoinPurchases: []domain.CoinPurchase{},
		Plans:         []domain.Plan{},
		Subscriptions: []domain.Subscription{},
		RewardClaims:  []domain.DailyRewardClaim{},
		SpinResults:   []domain.SpinResult{},
		Transactions:  []domain.Transaction{},
		Settings:      []domain.Settings{*domain.DefaultSettings()},
	}
}

func TestBackupValidate_EmptyArraysOK(t *testing.T) {
	if err := validBackup().Validate(); err != nil {
		t.Fatalf("backup with empty arrays should validate, got %v", err)
	}
}

func TestBackupValidate_MissingArray(t *testing.T) {
	b := validBackup()
	b.Transactions = nil
	if err := b.Validate(); !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("expected ErrInvalidBackup for missing transactions, got %v", err)
	}
}

func TestBackupValidate_MissingSettings(t *testing.T) {
	b := validBackup()
	b.Settings = nil
	if err := b.Validate(); !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("expected ErrInvalidBackup for missing settings, got %v", err)
	}

	b = validBackup()
	b.Settings = []domain.Settings{}
	if err := b.Validate(); !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("expected ErrInvalidBackup for empty settings, got %v", err)
	}
}

// The backup document must carry password hashes even though API responses
// never do; a restore from a hash-less file would lock every account out.
func TestBackupUsers_PasswordHashSurvivesJSON(t *testing.T) {
	b := validBackup()
	b.Users = []BackupUser{{
		ID:           1,
		Email:        "keeper@test.local",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Name:         "Keeper",
		ReferralCode: "REFKEEP0001",
	}}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored Backup
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(restored.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(restored.Users))
	}
	if got := restored.Users[0].PasswordHash; got != b.Users[0].PasswordHash {
		t.Fatalf("password hash lost in backup round trip: got %q", got)
	}
}

// A payload where a collection key is absent entirely must fail, which is
// what distinguishes nil from a present-but-empty array after unmarshalling.
func TestBackupValidate_MissingKeyInJSON(t *testing.T) {
	raw := `{
		"export_date": "2026-01-01T00:00:00Z",
		"users": [], "deposits": [], "withdrawals": [], "coin_purchases": [],
		"plans": [], "subscriptions": [], "reward_claims": [], "spin_results": [],
		"settings": [{"coin_rate": 10, "referral_percentage": 50}]
	}`

	var b Backup
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := b.Validate(); !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("expected ErrInvalidBackup when transactions key is absent, got %v", err)
	}
}
