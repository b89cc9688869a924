package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-librarian/internal/config"
)

type fakeEmbedder struct {
	got []string
	err error
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.got = append(f.got, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func TestNewEmbeddingFunc(t *testing.T) {
	fake := &fakeEmbedder{}
	fn := NewEmbeddingFunc(fake)

	vec, err := fn(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, []string{"hello"}, fake.got)
}

func TestNewEmbeddingFunc_PropagatesError(t *testing.T) {
	boom := errors.New("rate limited")
	fn := NewEmbeddingFunc(&fakeEmbedder{err: boom})

	_, err := fn(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)
}

func TestNewEmbedder(t *testing.T) {
	embedder, err := NewEmbedder(&config.LLMConfig{Model: "text-embedding-3-small", Key: "Bearer sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, embedder)
}
