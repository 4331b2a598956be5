package rag

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Ghost-141/chatbot-server/internal/repository"
)

// Document is a unit of retrievable text
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// DocumentSource supplies the documents an index is built from
type DocumentSource interface {
	Documents(ctx context.Context) ([]Document, error)
}

type catalogSource struct {
	repo repository.ProductRepository
}

// NewCatalogSource turns every product of the catalog into one document
// whose content is the full product record serialised as JSON.
func NewCatalogSource(repo repository.ProductRepository) DocumentSource {
	return &catalogSource{repo: repo}
}

func (s *catalogSource) Documents(ctx context.Context) ([]Document, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(products.Products))
	for i, p := range products.Products {
		content, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{
			ID:      strconv.Itoa(p.ID),
			Content: string(content),
			Metadata: map[string]string{
				"title":    p.Title,
				"category": p.Category,
				"seq_num":  strconv.Itoa(i + 1),
			},
		})
	}
	return docs, nil
}
