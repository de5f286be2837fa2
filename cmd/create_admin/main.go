package main

import (
	"context"
	"flag"
	"log"
	"os"

	"rtr_earnings/internal/db"
	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/repository"
	"rtr_earnings/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// Creates (or finds) an admin account and prints a token for it. Handy for
// local setup and smoke testing the admin endpoints.
func main() {
	email := flag.String("email", "admin@localhost", "admin email")
	password := flag.String("password", "", "admin password (required when creating)")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	u, err := repo.GetByEmail(ctx, *email)
	if err == nil {
		log.Printf("user already exists id=%d is_admin=%v\n", u.ID, u.IsAdmin)
	} else {
		if *password == "" {
			log.Fatal("-password is required to create a new admin")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		u = &domain.User{
			Email:        *email,
			PasswordHash: string(hash),
			Name:         "Administrator",
			IsAdmin:      true,
			ReferralCode: repository.GenerateReferralCode(),
		}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create admin failed: %v", err)
		}
		log.Printf("admin created id=%d\n", u.ID)
	}

	service.InitJWT()
	token, err := service.GenerateJWT(u.ID, u.IsAdmin)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
