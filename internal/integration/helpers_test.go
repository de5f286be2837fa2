package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

// setupDB connects, migrates and wipes all tables. Tests are skipped unless
// DATABASE_URL points at a disposable database.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)

	tables := []string{
		"transactions", "spin_results", "daily_reward_claims", "user_plans",
		"coin_purchases", "withdrawals", "deposits", "plans", "system_settings", "users",
	}
	for _, table := range tables {
		if _, err := db.Exec(context.Background(), "TRUNCATE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	return db
}

func seedSettings(t *testing.T, db *pgxpool.Pool) *domain.Settings {
	t.Helper()
	settings := domain.DefaultSettings()
	if err := repository.NewSettingsRepository(db).Create(context.Background(), settings); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return settings
}

func createUser(t *testing.T, db *pgxpool.Pool, email, referredBy string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test User",
		ReferralCode: repository.GenerateReferralCode(),
		ReferredBy:   referredBy,
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func setBalances(t *testing.T, db *pgxpool.Pool, userID int64, pkr float64, coins int64) {
	t.Helper()
	if _, err := db.Exec(context.Background(),
		`UPDATE users SET pkr_balance = $1, coin_balance = $2 WHERE id = $3`,
		pkr, coins, userID); err != nil {
		t.Fatalf("set balances: %v", err)
	}
}

func getBalances(t *testing.T, db *pgxpool.Pool, userID int64) (float64, int64) {
	t.Helper()
	var pkr float64
	var coins int64
	if err := db.QueryRow(context.Background(),
		`SELECT pkr_balance, coin_balance FROM users WHERE id = $1`, userID,
	).Scan(&pkr, &coins); err != nil {
		t.Fatalf("get balances: %v", err)
	}
	return pkr, coins
}

func countRows(t *testing.T, db *pgxpool.Pool, table string, userID int64) int {
	t.Helper()
	var n int
	if err := db.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM "+table+" WHERE user_id = $1", userID,
	).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
