package integration

import (
	"context"
	"errors"
	"testing"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/events"
	"rtr_earnings/internal/repository"
	"rtr_earnings/internal/service"
)

func TestDepositApproval_ExactlyOnceAndCommission(t *testing.T) {
	db := setupDB(t)
	seedSettings(t, db)
	ctx := context.Background()

	referrer := createUser(t, db, "referrer@test.local", "")
	depositor := createUser(t, db, "depositor@test.local", referrer.ReferralCode)

	depositRepo := repository.NewDepositRepository(db)
	approvals := service.NewApprovalService(db, events.NewHub())

	dep := &domain.Deposit{
		UserID:        depositor.ID,
		Amount:        1000,
		Method:        "easypaisa",
		TransactionID: "TX-1",
	}
	if err := depositRepo.Create(ctx, dep); err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	if err := approvals.ApproveDeposit(ctx, dep.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	pkr, _ := getBalances(t, db, depositor.ID)
	if pkr != 1000 {
		t.Fatalf("expected depositor balance 1000, got %v", pkr)
	}

	// first approved deposit pays 50% commission to the referrer
	refPkr, _ := getBalances(t, db, referrer.ID)
	if refPkr != 500 {
		t.Fatalf("expected referrer commission 500, got %v", refPkr)
	}

	// second approval of the same request must not double-credit
	if err := approvals.ApproveDeposit(ctx, dep.ID); !errors.Is(err, service.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	pkr, _ = getBalances(t, db, depositor.ID)
	if pkr != 1000 {
		t.Fatalf("double approval changed balance to %v", pkr)
	}

	// later deposits from the same user pay no further commission
	dep2 := &domain.Deposit{
		UserID:        depositor.ID,
		Amount:        2000,
		Method:        "easypaisa",
		TransactionID: "TX-2",
	}
	if err := depositRepo.Create(ctx, dep2); err != nil {
		t.Fatalf("create second deposit: %v", err)
	}
	if err := approvals.ApproveDeposit(ctx, dep2.ID); err != nil {
		t.Fatalf("approve second: %v", err)
	}
	refPkr, _ = getBalances(t, db, referrer.ID)
	if refPkr != 500 {
		t.Fatalf("expected no second commission, referrer has %v", refPkr)
	}

	txRepo := repository.NewTransactionRepository(db)
	commissions, err := txRepo.GetByUserIDAndType(ctx, referrer.ID, domain.TxReferralCommission, 10)
	if err != nil {
		t.Fatalf("load commissions: %v", err)
	}
	if len(commissions) != 1 {
		t.Fatalf("expected exactly one commission transaction, got %d", len(commissions))
	}
}

func TestWithdrawalApproval_InsufficientLeavesPending(t *testing.T) {
	db := setupDB(t)
	seedSettings(t, db)
	ctx := context.Background()

	user := createUser(t, db, "withdrawer@test.local", "")
	setBalances(t, db, user.ID, 500, 0)

	withdrawalRepo := repository.NewWithdrawalRepository(db)
	approvals := service.NewApprovalService(db, events.NewHub())

	w := &domain.Withdrawal{
		UserID:         user.ID,
		Amount:         800,
		Method:         "sadapay",
		AccountDetails: "0300-0000000",
	}
	if err := withdrawalRepo.Create(ctx, w); err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	if err := approvals.ApproveWithdrawal(ctx, w.ID); !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// request stays pending and can be approved after a top-up
	got, err := withdrawalRepo.GetByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("reload withdrawal: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("expected pending after failed approval, got %s", got.Status)
	}

	setBalances(t, db, user.ID, 1000, 0)
	if err := approvals.ApproveWithdrawal(ctx, w.ID); err != nil {
		t.Fatalf("approve after top-up: %v", err)
	}
	pkr, _ := getBalances(t, db, user.ID)
	if pkr != 200 {
		t.Fatalf("expected balance 200 after withdrawal, got %v", pkr)
	}
}

func TestCoinPurchaseApprovalAndReject(t *testing.T) {
	db := setupDB(t)
	seedSettings(t, db)
	ctx := context.Background()

	user := createUser(t, db, "coins@test.local", "")

	purchaseRepo := repository.NewCoinPurchaseRepository(db)
	approvals := service.NewApprovalService(db, events.NewHub())

	p := &domain.CoinPurchase{
		UserID:        user.ID,
		PkrAmount:     100,
		CoinAmount:    10,
		Method:        "easypaisa",
		TransactionID: "TX-C1",
	}
	if err := purchaseRepo.Create(ctx, p); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if err := approvals.ApproveCoinPurchase(ctx, p.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, coins := getBalances(t, db, user.ID)
	if coins != 10 {
		t.Fatalf("expected 10 coins, got %d", coins)
	}

	// reject leaves the balance alone and flips exactly once
	p2 := &domain.CoinPurchase{
		UserID:        user.ID,
		PkrAmount:     50,
		CoinAmount:    5,
		Method:        "easypaisa",
		TransactionID: "TX-C2",
	}
	if err := purchaseRepo.Create(ctx, p2); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if err := approvals.Reject(ctx, service.KindCoinPurchase, p2.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := approvals.Reject(ctx, service.KindCoinPurchase, p2.ID); !errors.Is(err, service.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed on second reject, got %v", err)
	}
	_, coins = getBalances(t, db, user.ID)
	if coins != 10 {
		t.Fatalf("reject changed coin balance to %d", coins)
	}
}
