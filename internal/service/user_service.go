package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SamuelFlet/hpdb/internal/auth"
	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

// UserService handles account creation and authentication.
type UserService interface {
	Signup(ctx context.Context, email, password, name string) (*domain.AuthPayload, error)
	Login(ctx context.Context, email, password string) (*domain.AuthPayload, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewUserService(users repository.UserRepository, secret string, tokenTTL time.Duration) UserService {
	return &userService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *userService) Signup(ctx context.Context, email, password, name string) (*domain.AuthPayload, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := auth.Sign(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &domain.AuthPayload{Token: token, User: sanitizeUser(user)}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrNoSuchUser
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	token, err := auth.Sign(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &domain.AuthPayload{Token: token, User: sanitizeUser(user)}, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
