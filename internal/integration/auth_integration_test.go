package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rtr_earnings/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	service.InitJWTWithSecret("integration-secret")
	auth := service.NewAuthService(db)

	user, err := auth.Register(ctx, service.RegisterInput{
		Email:    "New.User@Test.Local",
		Password: "hunter22",
		Name:     "New User",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "new.user@test.local" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if !strings.HasPrefix(user.ReferralCode, "REF") {
		t.Fatalf("expected generated referral code, got %q", user.ReferralCode)
	}
	if user.PkrBalance != 0 || user.CoinBalance != 0 {
		t.Fatalf("expected zero balances for a new user")
	}

	// duplicate email, case-insensitively
	if _, err := auth.Register(ctx, service.RegisterInput{
		Email:    "NEW.USER@test.local",
		Password: "hunter22",
		Name:     "Dup",
	}); !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// referral code must resolve
	if _, err := auth.Register(ctx, service.RegisterInput{
		Email:        "friend@test.local",
		Password:     "hunter22",
		Name:         "Friend",
		ReferralCode: "REFNOSUCH00",
	}); !errors.Is(err, service.ErrInvalidReferralCode) {
		t.Fatalf("expected ErrInvalidReferralCode, got %v", err)
	}

	friend, err := auth.Register(ctx, service.RegisterInput{
		Email:        "friend@test.local",
		Password:     "hunter22",
		Name:         "Friend",
		ReferralCode: user.ReferralCode,
	})
	if err != nil {
		t.Fatalf("register with valid code: %v", err)
	}
	if friend.ReferredBy != user.ReferralCode {
		t.Fatalf("expected referred_by %q, got %q", user.ReferralCode, friend.ReferredBy)
	}

	// login round trip
	logged, token, err := auth.Login(ctx, "new.user@test.local", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatalf("login returned wrong user or empty token")
	}

	parsedID, isAdmin, err := service.ParseJWT(token)
	if err != nil || parsedID != user.ID || isAdmin {
		t.Fatalf("token claims wrong: id=%d admin=%v err=%v", parsedID, isAdmin, err)
	}

	if _, _, err := auth.Login(ctx, "new.user@test.local", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
