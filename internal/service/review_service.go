package service

import (
	"context"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

// ReviewService reads reviews and derives product rating aggregates.
type ReviewService interface {
	ByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	ByUser(ctx context.Context, userID int64) ([]domain.Review, error)
	// Average returns the mean rating for a product, or nil when the
	// product has no reviews.
	Average(ctx context.Context, productID int64) (*float64, error)
}

type reviewService struct {
	reviews repository.ReviewRepository
}

func NewReviewService(reviews repository.ReviewRepository) ReviewService {
	return &reviewService{reviews: reviews}
}

func (s *reviewService) ByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

func (s *reviewService) ByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

func (s *reviewService) Average(ctx context.Context, productID int64) (*float64, error) {
	avg, ok, err := s.reviews.AverageForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &avg, nil
}
