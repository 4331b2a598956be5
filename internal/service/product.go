package service

import (
	"context"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/repository"
	"github.com/hashicorp/go-hclog"
)

type ProductService interface {
	GetProducts(ctx context.Context) (*domain.ProductList, error)
}

type productService struct {
	repo   repository.ProductRepository
	logger hclog.Logger
}

func NewProductService(repo repository.ProductRepository, logger hclog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger,
	}
}

func (s *productService) GetProducts(ctx context.Context) (*domain.ProductList, error) {
	s.logger.Info("Fetching all products")

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Unable to get products", "error", err)
		return nil, err
	}

	s.logger.Info("Fetched products", "count", len(products.Products))
	return products, nil
}
