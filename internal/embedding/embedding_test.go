package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-indexer/internal/config"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(64)

	a, err := e.EmbedQuery(ctx, "Nepal offers trekking in the Annapurna region")
	require.NoError(t, err)
	b, err := e.EmbedQuery(ctx, "Nepal offers trekking in the Annapurna region")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, math.Sqrt(dot(a, a)), 1e-5)
}

func TestHashEmbedder_SharedWordsAreCloser(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(384)

	query, _ := e.EmbedQuery(ctx, "vegan meal recipe")
	near, _ := e.EmbedQuery(ctx, "Meal recipe must be vegan")
	far, _ := e.EmbedQuery(ctx, "The weather should be in metric units")

	assert.Greater(t, dot(query, near), dot(query, far))
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	v, err := NewHashEmbedder(8).EmbedQuery(context.Background(), "   ")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-6)
}

func TestHashEmbedder_EmbedDocuments(t *testing.T) {
	e := NewHashEmbedder(0)
	assert.Equal(t, 384, e.Dimensions())

	vs, err := e.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
}

func TestNew(t *testing.T) {
	e, err := New(&config.LLMConfig{Provider: config.ProviderHash, Dimensions: 16})
	require.NoError(t, err)
	assert.IsType(t, &HashEmbedder{}, e)

	e, err = New(&config.LLMConfig{Provider: config.ProviderOllama, BaseURL: "http://localhost:11434", Model: "nomic-embed-text"})
	require.NoError(t, err)
	assert.NotNil(t, e)

	_, err = New(&config.LLMConfig{Provider: "voyage"})
	assert.Error(t, err)
}
