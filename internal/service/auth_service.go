package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Panjavaishnavi/news-app/internal/apperr"
	"github.com/Panjavaishnavi/news-app/internal/domain"
	"github.com/Panjavaishnavi/news-app/internal/repository"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// AuthService describes user lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, name, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// EnsureAdmin creates or promotes an admin account. Used only for the
	// startup bootstrap; the public signup path always yields role "user".
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) Register(ctx context.Context, name, username, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if name == "" || username == "" || email == "" {
		return nil, apperr.NewValidation("name, username and email are required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.NewValidation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	// Check-then-insert mirrors the legacy flow; the UNIQUE username
	// constraint catches the losing side of a concurrent signup race.
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperr.ErrUserAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.NewValidation("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// indistinguishable from a wrong password
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *authService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < MinPasswordLength {
		return apperr.NewValidation("admin username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		user := &domain.User{
			Name:         username,
			Username:     username,
			Email:        username + "@localhost",
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
		}
		_, err := s.users.Create(ctx, user)
		return err
	}

	return s.users.SetRoleAndPassword(ctx, existing.ID, domain.RoleAdmin, string(hash))
}

// sanitizeUser strips the password hash before a user leaves the service.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
