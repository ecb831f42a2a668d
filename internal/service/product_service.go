package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/media"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

// NewProductInput carries the validated arguments of the newProd mutation.
type NewProductInput struct {
	Name     string
	Category string
	File     *domain.Upload
}

// ProductService reads products and orchestrates product creation.
type ProductService interface {
	Feed(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, creator *domain.User, input NewProductInput) (*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
	pipeline *media.Pipeline
	logger   *logrus.Logger
}

func NewProductService(products repository.ProductRepository, pipeline *media.Pipeline, logger *logrus.Logger) ProductService {
	return &productService{
		products: products,
		pipeline: pipeline,
		logger:   logger,
	}
}

func (s *productService) Feed(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *productService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, creator *domain.User, input NewProductInput) (*domain.Product, error) {
	if creator == nil {
		return nil, ErrUnauthenticated
	}
	if input.File == nil || len(input.File.Data) == 0 {
		return nil, ErrNoFile
	}

	photoURL, err := s.pipeline.Ingest(ctx, input.File.Data, media.FolderProducts)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:     input.Name,
		Category: input.Category,
		Photo:    photoURL,
	}
	if _, err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"product": product.ID, "user": creator.ID}).Info("created product")
	return product, nil
}
