package rag

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedding is a deterministic bag-of-words embedding
func hashEmbedding(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 64)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%uint32(len(v))]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[0], norm = 1, 1
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / math.Sqrt(norm))
	}
	return v, nil
}

type countingSource struct {
	docs  []Document
	err   error
	calls int
}

func (s *countingSource) Documents(ctx context.Context) ([]Document, error) {
	s.calls++
	return s.docs, s.err
}

func catalogDocuments() []Document {
	texts := map[string]string{
		"1": `{"id":1,"title":"Kiwi","description":"Nutrient-rich kiwi fruit, perfect for snacking","category":"groceries"}`,
		"2": `{"id":2,"title":"Apple","description":"Fresh and crisp apple fruit","category":"groceries"}`,
		"3": `{"id":3,"title":"Essence Mascara Lash Princess","description":"Volumizing mascara","category":"beauty"}`,
		"4": `{"id":4,"title":"Red Lipstick","description":"Bold long lasting lipstick","category":"beauty"}`,
		"5": `{"id":5,"title":"Annibale Colombo Bed","description":"Luxurious bed frame","category":"furniture"}`,
		"6": `{"id":6,"title":"Wooden Bathroom Sink","description":"Sink with mirror","category":"furniture"}`,
		"7": `{"id":7,"title":"Calvin Klein CK One","description":"Classic unisex fragrance","category":"fragrances"}`,
		"8": `{"id":8,"title":"Green Kiwi Juice","description":"Cold pressed kiwi juice","category":"groceries"}`,
	}

	docs := make([]Document, 0, len(texts))
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		docs = append(docs, Document{ID: id, Content: texts[id], Metadata: map[string]string{"id": id}})
	}
	return docs
}

func openTestIndex(t *testing.T, dir string, source DocumentSource) *Index {
	t.Helper()
	idx, err := OpenIndex(context.Background(), IndexOptions{Dir: dir, Collection: "products", Concurrency: 2},
		source, hashEmbedding, hclog.NewNullLogger())
	require.NoError(t, err)
	return idx
}

func TestOpenIndexBuildsAndPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	source := &countingSource{docs: catalogDocuments()}

	idx := openTestIndex(t, dir, source)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, StatusPersisted, idx.Status())
	assert.Equal(t, 8, idx.Count())
	assert.FileExists(t, filepath.Join(dir, indexFileName))
}

func TestOpenIndexSkipsBuildWhenPersisted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	built := openTestIndex(t, dir, &countingSource{docs: catalogDocuments()})

	source := &countingSource{docs: catalogDocuments()}
	loaded := openTestIndex(t, dir, source)

	assert.Equal(t, 0, source.calls)
	assert.Equal(t, StatusLoaded, loaded.Status())
	assert.Equal(t, built.Count(), loaded.Count())

	query := "Tell me more about kiwi"
	fromBuilt, err := NewMMRRetriever(built, 5, 50, 0.5).Retrieve(context.Background(), query)
	require.NoError(t, err)
	fromLoaded, err := NewMMRRetriever(loaded, 5, 50, 0.5).Retrieve(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, ids(fromBuilt), ids(fromLoaded))
}

func TestBuildIndexKeepsIndexWhenPersistFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	idx := openTestIndex(t, filepath.Join(blocker, "db"), &countingSource{docs: catalogDocuments()})

	assert.Equal(t, StatusInMemory, idx.Status())

	docs, err := NewMMRRetriever(idx, 5, 50, 0.5).Retrieve(context.Background(), "kiwi")
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestBuildIndexSourceError(t *testing.T) {
	sourceErr := errors.New("catalog unavailable")

	_, err := OpenIndex(context.Background(), IndexOptions{Dir: t.TempDir(), Collection: "products"},
		&countingSource{err: sourceErr}, hashEmbedding, hclog.NewNullLogger())

	assert.ErrorIs(t, err, sourceErr)
}

func TestRetrievalIsStableAcrossRebuilds(t *testing.T) {
	query := "Tell me more about kiwi"

	var orderings [][]string
	for i := 0; i < 2; i++ {
		idx := openTestIndex(t, filepath.Join(t.TempDir(), "db"), &countingSource{docs: catalogDocuments()})

		docs, err := NewMMRRetriever(idx, 5, 50, 0.5).Retrieve(context.Background(), query)
		require.NoError(t, err)
		require.Len(t, docs, 5)
		orderings = append(orderings, ids(docs))
	}

	assert.Equal(t, orderings[0], orderings[1])
	assert.Contains(t, []string{"1", "8"}, orderings[0][0])
}

func TestRetrieveClampsToIndexSize(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "db"), &countingSource{docs: catalogDocuments()[:3]})

	docs, err := NewMMRRetriever(idx, 5, 50, 0.5).Retrieve(context.Background(), "kiwi")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestRetrieveFromEmptyIndex(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "db"), &countingSource{})

	docs, err := NewMMRRetriever(idx, 5, 50, 0.5).Retrieve(context.Background(), "kiwi")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
