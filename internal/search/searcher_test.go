package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

type fakeEmbedder struct {
	calls []string
	err   error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	conditions []models.FilterCondition
	limit      int
	results    []models.CodeChunk
	err        error
}

func (f *fakeStore) Search(_ context.Context, _ []float32, conditions []models.FilterCondition, limit int) ([]models.CodeChunk, error) {
	f.conditions = conditions
	f.limit = limit
	return f.results, f.err
}

func TestSearcher_Search(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{results: []models.CodeChunk{{FilePath: "auth.py"}}}
	s := NewSearcher(&config.SearchConfig{MaxResults: 3}, embedder, store, nil)

	chunks, err := s.Search(context.Background(), "Please explain login in auth.py", 0)
	require.NoError(t, err)

	assert.Len(t, chunks, 1)
	assert.Equal(t, []string{"login in auth.py"}, embedder.calls)
	assert.Equal(t, 3, store.limit)
	assert.Equal(t, []models.FilterCondition{{Field: models.FilterFieldName, Pattern: "auth.py"}}, store.conditions)
}

func TestSearcher_ExplicitLimit(t *testing.T) {
	store := &fakeStore{}
	s := NewSearcher(nil, &fakeEmbedder{}, store, nil)

	_, err := s.Search(context.Background(), "how are sessions stored", 8)
	require.NoError(t, err)
	assert.Equal(t, 8, store.limit)
	assert.Empty(t, store.conditions)

	_, err = s.Search(context.Background(), "how are sessions stored", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, store.limit)
}

func TestSearcher_EmptyQuery(t *testing.T) {
	embedder := &fakeEmbedder{}
	s := NewSearcher(nil, embedder, &fakeStore{}, nil)

	_, err := s.Search(context.Background(), "  please  ", 0)
	assert.ErrorIs(t, err, models.ErrEmptyQuery)
	assert.Empty(t, embedder.calls)
}

func TestSearcher_Failures(t *testing.T) {
	s := NewSearcher(nil, &fakeEmbedder{err: errors.New("rate limited")}, &fakeStore{}, nil)
	_, err := s.Search(context.Background(), "where is config parsed", 0)
	assert.ErrorIs(t, err, models.ErrRetrievalFailed)

	s = NewSearcher(nil, &fakeEmbedder{}, &fakeStore{err: errors.New("connection refused")}, nil)
	_, err = s.Search(context.Background(), "where is config parsed", 0)
	assert.ErrorIs(t, err, models.ErrRetrievalFailed)
}
