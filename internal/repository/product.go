package repository

import (
	"context"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

// ProductRepository defines persistence operations for Product entities.
type ProductRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}
