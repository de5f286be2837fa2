package service

import (
	"context"
	"errors"
	"strings"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// AuthService handles registration and login.
type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(db *pgxpool.Pool) *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(db),
	}
}

type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	ReferralCode string
}

// Register creates a user. A supplied referral code must resolve to an
// existing user; the new user's own code is generated and retried on the
// rare unique-index collision.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	referredBy := ""
	if in.ReferralCode != "" {
		referrer, err := s.userRepo.GetByReferralCode(ctx, in.ReferralCode)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		referredBy = referrer.ReferralCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		ReferredBy:   referredBy,
	}

	for i := 0; i < 5; i++ {
		user.ReferralCode = repository.GenerateReferralCode()
		if err = s.userRepo.Create(ctx, user); err == nil {
			return user, nil
		}
	}

	return nil, err
}

// Login verifies credentials and returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID, user.IsAdmin)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
