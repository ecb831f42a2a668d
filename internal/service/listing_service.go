package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/media"
	"github.com/SamuelFlet/hpdb/internal/pubsub"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

// NewListingInput carries the validated arguments of the newListing
// mutation. File must be a non-nil payload; the photo is never optional.
type NewListingInput struct {
	Title       string
	Description string
	Cost        float64
	ProductID   int64
	File        *domain.Upload
}

// ListingService reads listings and orchestrates listing creation:
// auth gate, media ingestion, record write, event publish.
type ListingService interface {
	Feed(ctx context.Context) ([]domain.Listing, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	ByProduct(ctx context.Context, productID int64, order repository.ListingOrder) ([]domain.Listing, error)
	ByUser(ctx context.Context, userID int64) ([]domain.Listing, error)
	Create(ctx context.Context, poster *domain.User, input NewListingInput) (*domain.Listing, error)
}

type listingService struct {
	listings repository.ListingRepository
	pipeline *media.Pipeline
	bus      *pubsub.ListingBus
	logger   *logrus.Logger
}

func NewListingService(listings repository.ListingRepository, pipeline *media.Pipeline, bus *pubsub.ListingBus, logger *logrus.Logger) ListingService {
	return &listingService{
		listings: listings,
		pipeline: pipeline,
		bus:      bus,
		logger:   logger,
	}
}

func (s *listingService) Feed(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.List(ctx)
}

func (s *listingService) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

func (s *listingService) ByProduct(ctx context.Context, productID int64, order repository.ListingOrder) ([]domain.Listing, error) {
	return s.listings.ListByProduct(ctx, productID, order)
}

func (s *listingService) ByUser(ctx context.Context, userID int64) ([]domain.Listing, error) {
	return s.listings.ListByUser(ctx, userID)
}

// Create ingests the photo, writes the listing and publishes it to the
// bus. Ingestion failure aborts before any record exists; publish happens
// after the write and is not atomic with it.
func (s *listingService) Create(ctx context.Context, poster *domain.User, input NewListingInput) (*domain.Listing, error) {
	if poster == nil {
		return nil, ErrUnauthenticated
	}
	if input.File == nil || len(input.File.Data) == 0 {
		return nil, ErrNoFile
	}

	photoURL, err := s.pipeline.Ingest(ctx, input.File.Data, media.FolderListings)
	if err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		Title:       input.Title,
		Description: input.Description,
		Cost:        input.Cost,
		Photo:       photoURL,
		ProductID:   input.ProductID,
		PostedByID:  poster.ID,
	}
	if _, err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.bus.Publish(listing)
	s.logger.WithFields(logrus.Fields{"listing": listing.ID, "user": poster.ID}).Info("created listing")
	return listing, nil
}
