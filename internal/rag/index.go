package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/philippgille/chromem-go"
)

const indexFileName = "index.gob.gz"

// IndexStatus tells where the index in memory came from
type IndexStatus string

const (
	// StatusLoaded means the index was read back from disk
	StatusLoaded IndexStatus = "loaded"
	// StatusPersisted means the index was built and written to disk
	StatusPersisted IndexStatus = "persisted"
	// StatusInMemory means the index was built but could not be written
	StatusInMemory IndexStatus = "in-memory"
)

// IndexOptions locates the persisted index and tunes building it
type IndexOptions struct {
	Dir        string
	Collection string
	// Number of documents embedded in parallel while building
	Concurrency int
}

// Index is a vector similarity index over catalog documents.
// It is read-only once opened and safe for concurrent use.
type Index struct {
	collection *chromem.Collection
	embed      chromem.EmbeddingFunc
	status     IndexStatus
}

// Candidate is a search hit together with its stored embedding
type Candidate struct {
	Document
	Embedding  []float32
	Similarity float32
}

// OpenIndex loads the persisted index from opts.Dir when one exists and
// builds it from source otherwise. The source is not consulted when the
// persisted index is loaded.
func OpenIndex(
	ctx context.Context,
	opts IndexOptions,
	source DocumentSource,
	embed chromem.EmbeddingFunc,
	logger hclog.Logger) (*Index, error) {
	path := filepath.Join(opts.Dir, indexFileName)

	if _, err := os.Stat(path); err == nil {
		logger.Info("Loading persisted vector index", "path", path)
		return LoadIndex(path, opts.Collection, embed)
	}

	logger.Info("No persisted vector index found, building", "path", path)
	return BuildIndex(ctx, opts, source, embed, logger)
}

// LoadIndex reads an index written by BuildIndex. The file is trusted as is.
func LoadIndex(path, collection string, embed chromem.EmbeddingFunc) (*Index, error) {
	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("importing vector index %s: %w", path, err)
	}

	c := db.GetCollection(collection, embed)
	if c == nil {
		return nil, fmt.Errorf("vector index %s has no collection %q", path, collection)
	}

	return &Index{collection: c, embed: embed, status: StatusLoaded}, nil
}

// BuildIndex embeds every document of source and tries to persist the result
// to opts.Dir. A persistence failure leaves a usable in-memory index.
func BuildIndex(
	ctx context.Context,
	opts IndexOptions,
	source DocumentSource,
	embed chromem.EmbeddingFunc,
	logger hclog.Logger) (*Index, error) {
	docs, err := source.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	db := chromem.NewDB()
	c, err := db.CreateCollection(opts.Collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	if len(docs) > 0 {
		concurrency := opts.Concurrency
		if concurrency <= 0 {
			concurrency = runtime.NumCPU()
		}

		chromemDocs := make([]chromem.Document, 0, len(docs))
		for _, d := range docs {
			chromemDocs = append(chromemDocs, chromem.Document{
				ID:       d.ID,
				Content:  d.Content,
				Metadata: d.Metadata,
			})
		}
		if err := c.AddDocuments(ctx, chromemDocs, concurrency); err != nil {
			return nil, fmt.Errorf("embedding documents: %w", err)
		}
	}

	idx := &Index{collection: c, embed: embed, status: StatusInMemory}

	if err := persist(db, opts.Dir); err != nil {
		logger.Warn("Unable to persist vector index, keeping it in memory only", "dir", opts.Dir, "error", err)
	} else {
		idx.status = StatusPersisted
	}

	logger.Info("Built vector index", "documents", len(docs), "status", idx.status)
	return idx, nil
}

// persist writes the database to a temporary file and moves it into place
// so a failed write never leaves a truncated index behind
func persist(db *chromem.DB, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "index-*.gob.gz")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	tempFile.Close()
	defer os.Remove(tempPath)

	if err := db.ExportToFile(tempPath, true, ""); err != nil {
		return fmt.Errorf("unable to export index: %w", err)
	}

	if err := os.Rename(tempPath, filepath.Join(dir, indexFileName)); err != nil {
		return fmt.Errorf("unable to move index to final location: %w", err)
	}
	return nil
}

// Embed converts text with the same provider the index was built with
func (i *Index) Embed(ctx context.Context, text string) ([]float32, error) {
	return i.embed(ctx, text)
}

// Search returns up to n documents closest to the query embedding, most similar first
func (i *Index) Search(ctx context.Context, query []float32, n int) ([]Candidate, error) {
	if count := i.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := i.collection.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, Candidate{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Embedding:  r.Embedding,
			Similarity: r.Similarity,
		})
	}
	return candidates, nil
}

func (i *Index) Count() int {
	return i.collection.Count()
}

func (i *Index) Status() IndexStatus {
	return i.status
}
