package repository

import (
	"context"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

// ListingOrder selects an ordering for listing queries. The zero value
// keeps the store's default order.
type ListingOrder string

const (
	OrderDefault  ListingOrder = ""
	OrderCostAsc  ListingOrder = "cost_ASC"
	OrderCostDesc ListingOrder = "cost_DESC"
)

// ListingRepository defines persistence operations for Listing entities.
type ListingRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, listing *domain.Listing) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
	ListByProduct(ctx context.Context, productID int64, order ListingOrder) ([]domain.Listing, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Listing, error)
}
