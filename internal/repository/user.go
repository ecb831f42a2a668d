package repository

import (
	"context"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

// UserRepository defines persistence operations for User entities. Email
// uniqueness is enforced by the store, not by callers.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
