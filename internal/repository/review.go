package repository

import (
	"context"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

// ReviewRepository defines persistence operations for Review entities.
// AverageForProduct reports ok=false when the product has no reviews.
type ReviewRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, review *domain.Review) (int64, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Review, error)
	AverageForProduct(ctx context.Context, productID int64) (avg float64, ok bool, err error)
}
