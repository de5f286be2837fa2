package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/repository"
	"rtr_earnings/internal/service"
)

func TestDeleteUser_Cascades(t *testing.T) {
	db := setupDB(t)
	seedSettings(t, db)
	ctx := context.Background()

	user := createUser(t, db, "doomed@test.local", "")
	setBalances(t, db, user.ID, 10000, 500)

	depositRepo := repository.NewDepositRepository(db)
	dep := &domain.Deposit{UserID: user.ID, Amount: 100, Method: "easypaisa", TransactionID: "TX-D"}
	if err := depositRepo.Create(ctx, dep); err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	rewards := service.NewRewardService(db, events.NewHub())
	if _, err := rewards.ClaimDailyReward(ctx, user.ID); err != nil {
		t.Fatalf("claim reward: %v", err)
	}
	if _, err := rewards.Spin(ctx, user.ID); err != nil {
		t.Fatalf("spin: %v", err)
	}

	admin := service.NewAdminService(db, events.NewHub())
	if err := admin.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	for _, table := range []string{
		"deposits", "withdrawals", "coin_purchases", "user_plans",
		"daily_reward_claims", "spin_results", "transactions",
	} {
		if n := countRows(t, db, table, user.ID); n != 0 {
			t.Fatalf("expected 0 rows in %s after deletion, got %d", table, n)
		}
	}

	userRepo := repository.NewUserRepository(db)
	if _, err := userRepo.GetByID(ctx, user.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}

	if err := admin.DeleteUser(ctx, user.ID); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestAdjustBalance_TransactionCategories(t *testing.T) {
	db := setupDB(t)
	seedSettings(t, db)
	ctx := context.Background()

	user := createUser(t, db, "adjusted@test.local", "")
	setBalances(t, db, user.ID, 1000, 100)

	admin := service.NewAdminService(db, events.NewHub())

	if err := admin.AdjustBalance(ctx, user.ID, 250, -30); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	pkr, coins := getBalances(t, db, user.ID)
	if pkr != 1250 || coins != 70 {
		t.Fatalf("expected 1250/70 after adjustment, got %v/%d", pkr, coins)
	}

	txRepo := repository.NewTransactionRepository(db)
	adminTxs, err := txRepo.GetByUserIDAndType(ctx, user.ID, domain.TxAdminAdjustment, 10)
	if err != nil {
		t.Fatalf("load adjustments: %v", err)
	}
	if len(adminTxs) != 1 || adminTxs[0].Amount != -30 {
		t.Fatalf("expected one admin_adjustment of -30, got %+v", adminTxs)
	}

	// a coin adjustment must not masquerade as a reward payout
	rewardTxs, err := txRepo.GetByUserIDAndType(ctx, user.ID, domain.TxDailyReward, 10)
	if err != nil {
		t.Fatalf("load reward txs: %v", err)
	}
	if len(rewardTxs) != 0 {
		t.Fatalf("coin adjustment recorded as daily_reward")
	}

	// PKR rows follow the approval convention: positive magnitude, the
	// type carries the direction
	depositTxs, err := txRepo.GetByUserIDAndType(ctx, user.ID, domain.TxDeposit, 10)
	if err != nil {
		t.Fatalf("load deposit txs: %v", err)
	}
	if len(depositTxs) != 1 || depositTxs[0].Amount != 250 {
		t.Fatalf("expected one deposit row of 250 for the credit, got %+v", depositTxs)
	}

	if err := admin.AdjustBalance(ctx, user.ID, -40, 0); err != nil {
		t.Fatalf("debit adjust: %v", err)
	}
	pkr, _ = getBalances(t, db, user.ID)
	if pkr != 1210 {
		t.Fatalf("expected 1210 after debit, got %v", pkr)
	}
	withdrawalTxs, err := txRepo.GetByUserIDAndType(ctx, user.ID, domain.TxWithdrawal, 10)
	if err != nil {
		t.Fatalf("load withdrawal txs: %v", err)
	}
	if len(withdrawalTxs) != 1 || withdrawalTxs[0].Amount != 40 {
		t.Fatalf("expected one withdrawal row of 40 for the debit, got %+v", withdrawalTxs)
	}

	// overdraw is refused outright
	if err := admin.AdjustBalance(ctx, user.ID, -99999, 0); !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := admin.AdjustBalance(ctx, user.ID, 0, 0); !errors.Is(err, service.ErrNoAdjustment) {
		t.Fatalf("expected ErrNoAdjustment, got %v", err)
	}
}

func TestBackup_RoundTrip(t *testing.T) {
	db := setupDB(t)
	seedSettings(t, db)
	ctx := context.Background()

	referrer := createUser(t, db, "b-referrer@test.local", "")
	user := createUser(t, db, "b-user@test.local", referrer.ReferralCode)
	setBalances(t, db, user.ID, 1234.5, 67)

	depositRepo := repository.NewDepositRepository(db)
	dep := &domain.Deposit{UserID: user.ID, Amount: 1000, Method: "easypaisa", TransactionID: "TX-B"}
	if err := depositRepo.Create(ctx, dep); err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	approvals := service.NewApprovalService(db, events.NewHub())
	if err := approvals.ApproveDeposit(ctx, dep.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	backups := service.NewBackupService(db)
	exported, err := backups.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.ExportDate == "" {
		t.Fatalf("export date missing")
	}
	if len(exported.Users) != 2 {
		t.Fatalf("expected 2 users in export, got %d", len(exported.Users))
	}

	// wipe one user's balance to prove import really restores state
	setBalances(t, db, user.ID, 0, 0)

	// import the serialized document, not the in-memory struct, to cover
	// the same path as a downloaded file being uploaded again
	raw, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var uploaded service.Backup
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := backups.Import(ctx, &uploaded); err != nil {
		t.Fatalf("import: %v", err)
	}

	reExported, err := backups.Export(ctx)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if len(reExported.Users) != len(exported.Users) ||
		len(reExported.Deposits) != len(exported.Deposits) ||
		len(reExported.Transactions) != len(exported.Transactions) {
		t.Fatalf("round trip changed record counts")
	}

	// balances restored, referral commission intact
	pkr, coins := getBalances(t, db, user.ID)
	if pkr != 2234.5 || coins != 67 {
		t.Fatalf("expected restored balances 2234.5/67, got %v/%d", pkr, coins)
	}

	// credentials restored: the document must round-trip password hashes
	service.InitJWTWithSecret("test-secret")
	auths := service.NewAuthService(db)
	if _, _, err := auths.Login(ctx, user.Email, "password"); err != nil {
		t.Fatalf("login after restore: %v", err)
	}

	// new inserts must not collide with restored ids
	extra := createUser(t, db, "b-after@test.local", "")
	if extra.ID <= user.ID {
		t.Fatalf("sequence not bumped past restored ids: new id %d", extra.ID)
	}
}
