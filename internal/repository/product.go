package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Ghost-141/chatbot-server/internal/domain"
)

type ProductRepository interface {
	GetAll(ctx context.Context) (*domain.ProductList, error)
}

// jsonFileProductRepository reads the catalog file on every call
type jsonFileProductRepository struct {
	path      string
	validator *domain.Validation
}

func NewJSONFileProductRepository(path string, validator *domain.Validation) ProductRepository {
	return &jsonFileProductRepository{
		path:      path,
		validator: validator,
	}
}

func (r *jsonFileProductRepository) GetAll(ctx context.Context) (*domain.ProductList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("reading product catalog: %w", err)
	}

	var products domain.ProductList
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCatalog, r.path, err)
	}

	if errs := r.validator.Validate(&products); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCatalog, r.path, errs)
	}

	return &products, nil
}
