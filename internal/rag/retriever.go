package rag

import (
	"context"
	"fmt"
)

// Retriever finds the documents relevant to a query
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// MMRRetriever fetches FetchK nearest neighbours from the index and returns
// the K most relevant and diverse of them.
type MMRRetriever struct {
	index  *Index
	k      int
	fetchK int
	lambda float64
}

func NewMMRRetriever(index *Index, k, fetchK int, lambda float64) *MMRRetriever {
	return &MMRRetriever{
		index:  index,
		k:      k,
		fetchK: fetchK,
		lambda: lambda,
	}
}

func (r *MMRRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	qv, err := r.index.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.index.Search(ctx, qv, r.fetchK)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(candidates))
	for i, c := range candidates {
		embeddings[i] = c.Embedding
	}

	selected := maximalMarginalRelevance(qv, embeddings, r.k, r.lambda)

	docs := make([]Document, 0, len(selected))
	for _, i := range selected {
		docs = append(docs, candidates[i].Document)
	}
	return docs, nil
}
